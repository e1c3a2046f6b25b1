// Package physics maps a pitch, an elapsed time and a target at the plate to
// the ball's 3D position.
//
// The model is a "ghost aim" construction, not an integration of drag and
// Magnus forces. The pitch is released toward an aim point offset from the
// target by the pitch's total movement, travels linearly toward it, and the
// movement is added back as a term that grows with the square of progress.
// At the end of the flight the two cancel and the ball lands on the target.
package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
)

const (
	MoundDistance = 60.5   // feet, rubber to plate
	MPHToFPS      = 1.467  // mph to feet per second
	Gravity       = 32.174 // ft/s^2

	// DecisionPointZ is the distance from the plate past which a batter can
	// no longer change the swing decision
	DecisionPointZ = 23.8
)

var (
	// ErrInvalidVelocity is returned by Validate for pitches the model cannot fly
	ErrInvalidVelocity = errors.New("pitch velocity must be greater than zero")
	// ErrInvalidRelease is returned by Validate for a release point off the
	// mound: extension outside (0, MoundDistance), a release distance other
	// than MoundDistance minus extension, or a non-finite coordinate
	ErrInvalidRelease = errors.New("release point inconsistent with extension")
)

// releaseTolerance is how far, in feet, a release distance may drift from
// MoundDistance - Extension
const releaseTolerance = 1e-6

// Validate checks the model's preconditions on a pitch
func Validate(p models.Pitch) error {
	if !(p.Velocity > 0) || math.IsInf(p.Velocity, 0) {
		return fmt.Errorf("%s at %.1f mph: %w", p.Code, p.Velocity, ErrInvalidVelocity)
	}
	if !(p.Extension > 0 && p.Extension < MoundDistance) {
		return fmt.Errorf("%s with %.2f ft extension: %w", p.Code, p.Extension, ErrInvalidRelease)
	}
	r := p.Release
	for _, v := range []float64{r.X, r.Y, r.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s released at %v: %w", p.Code, r, ErrInvalidRelease)
		}
	}
	if math.Abs(r.Z-(MoundDistance-p.Extension)) > releaseTolerance {
		return fmt.Errorf("%s released %.2f ft from the plate with %.2f ft extension: %w",
			p.Code, r.Z, p.Extension, ErrInvalidRelease)
	}
	return nil
}

// TotalFlightTime returns the seconds from release to the plate for a pitch
// thrown at velocityMph. Non-positive velocities return 0.
func TotalFlightTime(velocityMph float64) float64 {
	if !(velocityMph > 0) {
		return 0
	}
	return MoundDistance / (velocityMph * MPHToFPS)
}

// GravityDrop returns the total fall due to gravity over a flight of the given length
func GravityDrop(flightTime float64) float64 {
	return 0.5 * Gravity * flightTime * flightTime
}

// AimPoint returns the ghost aim point for a pitch: the point the ball would
// reach with no break and no gravity, chosen so that adding the movement
// back lands the ball on target.
func AimPoint(p models.Pitch, target models.Point3D) models.Point3D {
	netVertical := p.VerticalBreak - GravityDrop(TotalFlightTime(p.Velocity))
	return models.Point3D{
		X: target.X - p.HorizontalBreak,
		Y: target.Y - netVertical,
		Z: 0,
	}
}

// Position returns where the ball is t seconds after release.
//
// Time is clamped to [0, flight time], so the ball never travels behind the
// plate and a late t returns the target. Velocity must be positive; a pitch
// that fails Validate stays at its release point.
func Position(p models.Pitch, t float64, target models.Point3D) models.Point3D {
	totalTime := TotalFlightTime(p.Velocity)
	if totalTime <= 0 {
		return p.Release
	}

	currentTime := math.Min(t, totalTime)
	if currentTime < 0 || math.IsNaN(currentTime) {
		currentTime = 0
	}
	pct := currentTime / totalTime

	netVertical := p.VerticalBreak - GravityDrop(totalTime)
	aim := AimPoint(p, target)

	start := p.Release
	linearX := start.X + (aim.X-start.X)*pct
	linearY := start.Y + (aim.Y-start.Y)*pct
	z := start.Z - start.Z*pct

	pct2 := pct * pct
	return models.Point3D{
		X: linearX + p.HorizontalBreak*pct2,
		Y: linearY + netVertical*pct2,
		Z: math.Max(0, z),
	}
}

// Trail samples a pitch's path at samples+1 evenly spaced instants from
// release to the plate. Split is the index of the first point past the
// decision point, or len(points) when the pitch never crosses it.
type Trail struct {
	Code       string           `json:"code"`
	Color      string           `json:"color"`
	FlightTime float64          `json:"flight_time"`
	Target     models.Point3D   `json:"target"`
	Points     []models.Point3D `json:"points"`
	Split      int              `json:"split"`
}

// DefaultTrailSamples is the number of segments in a trail
const DefaultTrailSamples = 50

// BuildTrail samples the path of p toward target
func BuildTrail(p models.Pitch, target models.Point3D, samples int) Trail {
	if samples < 1 {
		samples = DefaultTrailSamples
	}
	flightTime := TotalFlightTime(p.Velocity)

	points := make([]models.Point3D, samples+1)
	for i := 0; i <= samples; i++ {
		points[i] = Position(p, float64(i)/float64(samples)*flightTime, target)
	}

	split := len(points)
	for i, pt := range points {
		if pt.Z < DecisionPointZ {
			split = i
			break
		}
	}

	return Trail{
		Code:       p.Code,
		Color:      models.DisplayColor(p.Code),
		FlightTime: flightTime,
		Target:     target,
		Points:     points,
		Split:      split,
	}
}
