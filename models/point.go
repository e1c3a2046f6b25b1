package models

import "math"

// Point3D is a position in the pitch lab coordinate system, in feet.
// X is lateral (display convention), Y is height above the ground and
// Z is the distance from the front of home plate toward the mound.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewPoint3D creates a point from its components
func NewPoint3D(x, y, z float64) Point3D {
	return Point3D{X: x, Y: y, Z: z}
}

// Add returns p + o
func (p Point3D) Add(o Point3D) Point3D { return Point3D{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }

// Sub returns p - o
func (p Point3D) Sub(o Point3D) Point3D { return Point3D{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }

// Mul scales p by k
func (p Point3D) Mul(k float64) Point3D { return Point3D{p.X * k, p.Y * k, p.Z * k} }

// Lerp interpolates between p and o, t=0 returns p and t=1 returns o
func (p Point3D) Lerp(o Point3D, t float64) Point3D {
	return Point3D{
		X: p.X + (o.X-p.X)*t,
		Y: p.Y + (o.Y-p.Y)*t,
		Z: p.Z + (o.Z-p.Z)*t,
	}
}

// Midpoint returns the point halfway between p and o. Argument order does
// not change the result.
func (p Point3D) Midpoint(o Point3D) Point3D {
	return p.Add(o).Mul(0.5)
}

// DistanceTo returns the Euclidean distance between p and o
func (p Point3D) DistanceTo(o Point3D) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// DefaultTarget returns the center-of-zone target used when the user has
// not placed one for a pitch
func DefaultTarget() Point3D {
	return Point3D{X: 0, Y: 2.5, Z: 0}
}

// NewTarget returns a target in the strike zone plane (Z is always 0)
func NewTarget(x, y float64) Point3D {
	return Point3D{X: x, Y: y, Z: 0}
}
