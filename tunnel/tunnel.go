// Package tunnel measures how far apart two pitches are when they reach the
// batter's decision point.
package tunnel

import (
	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
	"github.com/nermal1/MLB-Pitcher-Market-Value/physics"
)

const (
	// DecisionPointZ is the distance from the plate, in feet, at which the
	// separation is measured. It does not depend on velocity.
	DecisionPointZ = physics.DecisionPointZ

	// GoodTunnelInches is the separation below which two pitches are
	// indistinguishable to the batter
	GoodTunnelInches = 6.0
)

// Metric is the separation of two pitches at the decision point
type Metric struct {
	SeparationInches float64        `json:"separation_inches"`
	IsGood           bool           `json:"is_good"`
	Midpoint         models.Point3D `json:"midpoint"`
}

// Aimed is a pitch together with the target it is thrown at
type Aimed struct {
	Pitch  models.Pitch   `json:"pitch"`
	Target models.Point3D `json:"target"`
}

// CrossingFraction returns the fraction of the flight after which the pitch
// crosses the decision point. Releases at or inside the decision point
// return 0.
func CrossingFraction(p models.Pitch) float64 {
	releaseZ := p.Release.Z
	if releaseZ <= DecisionPointZ {
		return 0
	}
	return (releaseZ - DecisionPointZ) / releaseZ
}

// PositionAtDecisionPoint returns where the pitch is when it crosses the decision point
func PositionAtDecisionPoint(p models.Pitch, target models.Point3D) models.Point3D {
	t := physics.TotalFlightTime(p.Velocity) * CrossingFraction(p)
	return physics.Position(p, t, target)
}

// Separation measures two pitches at the decision point. Swapping the
// pitches gives the same result.
func Separation(a models.Pitch, targetA models.Point3D, b models.Pitch, targetB models.Point3D) Metric {
	posA := PositionAtDecisionPoint(a, targetA)
	posB := PositionAtDecisionPoint(b, targetB)

	inches := posA.DistanceTo(posB) * 12
	return Metric{
		SeparationInches: inches,
		IsGood:           inches < GoodTunnelInches,
		Midpoint:         posA.Midpoint(posB),
	}
}

// Analyze measures the first two active pitches. It returns nil when fewer
// than two are active.
func Analyze(active []Aimed) *Metric {
	if len(active) < 2 {
		return nil
	}
	m := Separation(active[0].Pitch, active[0].Target, active[1].Pitch, active[1].Target)
	return &m
}
