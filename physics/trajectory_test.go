package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
)

const tolerance = 1e-6

func fastball() models.Pitch {
	return models.Pitch{
		Code:            models.PitchFourSeam,
		Velocity:        95,
		SpinRate:        2400,
		Extension:       6.5,
		HorizontalBreak: -0.3,
		VerticalBreak:   1.4,
		Release:         models.NewPoint3D(1.5, 6.0, 54.0),
		Hand:            models.HandRight,
	}
}

func testPitches() []models.Pitch {
	curve := models.Pitch{
		Code:            models.PitchCurve,
		Velocity:        78.2,
		Extension:       6.1,
		HorizontalBreak: 0.75,
		VerticalBreak:   -1.1,
		Release:         models.NewPoint3D(1.9, 5.6, MoundDistance-6.1),
	}
	sweeper := models.Pitch{
		Code:            models.PitchSweeper,
		Velocity:        83.5,
		Extension:       5.8,
		HorizontalBreak: 1.4,
		VerticalBreak:   0.05,
		Release:         models.NewPoint3D(-2.3, 5.2, MoundDistance-5.8),
		Hand:            models.HandLeft,
	}
	return []models.Pitch{fastball(), curve, sweeper}
}

func testTargets() []models.Point3D {
	return []models.Point3D{
		models.DefaultTarget(),
		models.NewTarget(-0.7, 1.5),
		models.NewTarget(0.83, 3.6),
		models.NewTarget(1.9, 0.4),
	}
}

func assertPointNear(t *testing.T, expected, actual models.Point3D, delta float64) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, delta, "x")
	assert.InDelta(t, expected.Y, actual.Y, delta, "y")
	assert.InDelta(t, expected.Z, actual.Z, delta, "z")
}

// TestPositionLandsOnTarget tests that every pitch reaches its target at the end of flight
func TestPositionLandsOnTarget(t *testing.T) {
	for _, p := range testPitches() {
		for _, target := range testTargets() {
			t.Run(p.Code, func(t *testing.T) {
				got := Position(p, TotalFlightTime(p.Velocity), target)
				assertPointNear(t, target, got, tolerance)
			})
		}
	}
}

// TestPositionStartsAtRelease tests that no break or gravity is applied at t=0
func TestPositionStartsAtRelease(t *testing.T) {
	for _, p := range testPitches() {
		for _, target := range testTargets() {
			assert.Equal(t, p.Release, Position(p, 0, target))
		}
	}
}

// TestPositionClampsTime tests that time past the plate holds the final position
func TestPositionClampsTime(t *testing.T) {
	p := fastball()
	target := models.NewTarget(0.5, 1.8)
	total := TotalFlightTime(p.Velocity)
	atPlate := Position(p, total, target)

	for _, late := range []float64{total + 1e-9, total + 0.01, 0.6, 5, math.Inf(1)} {
		assert.Equal(t, atPlate, Position(p, late, target), "t=%v", late)
	}

	// negative time holds the release point
	assert.Equal(t, p.Release, Position(p, -0.2, target))
}

// TestPositionZNeverNegative tests the plate clamp across the whole flight
func TestPositionZNeverNegative(t *testing.T) {
	for _, p := range testPitches() {
		total := TotalFlightTime(p.Velocity)
		prevZ := math.Inf(1)
		for i := 0; i <= 200; i++ {
			ti := float64(i) / 100 * total
			pos := Position(p, ti, models.DefaultTarget())
			assert.GreaterOrEqual(t, pos.Z, 0.0)
			assert.LessOrEqual(t, pos.Z, prevZ, "z should not increase over time")
			prevZ = pos.Z
		}
	}
}

// TestFastballScenario tests a 95 mph four-seamer to the middle of the zone
func TestFastballScenario(t *testing.T) {
	p := fastball()

	total := TotalFlightTime(p.Velocity)
	assert.InDelta(t, 60.5/(95*1.467), total, 1e-12)
	assert.InDelta(t, 0.434, total, 0.001)

	assertPointNear(t, models.DefaultTarget(), Position(p, 0.434, models.DefaultTarget()), 0.05)
	assertPointNear(t, models.DefaultTarget(), Position(p, total, models.DefaultTarget()), tolerance)
}

// TestPositionBreaksLate tests that the quadratic term bends the path more near the plate
func TestPositionBreaksLate(t *testing.T) {
	p := fastball()
	p.HorizontalBreak = 1.2
	target := models.DefaultTarget()
	aim := AimPoint(p, target)
	total := TotalFlightTime(p.Velocity)

	offsetAt := func(pct float64) float64 {
		pos := Position(p, total*pct, target)
		linearX := p.Release.X + (aim.X-p.Release.X)*pct
		return pos.X - linearX
	}

	early := offsetAt(0.25)
	late := offsetAt(0.75)
	assert.InDelta(t, 1.2*0.0625, early, tolerance)
	assert.InDelta(t, 1.2*0.5625, late, tolerance)
	assert.Greater(t, late, early*8)
}

func TestAimPoint(t *testing.T) {
	p := fastball()
	aim := AimPoint(p, models.DefaultTarget())
	drop := GravityDrop(TotalFlightTime(p.Velocity))

	assert.InDelta(t, 0.3, aim.X, tolerance)
	assert.InDelta(t, 2.5-(1.4-drop), aim.Y, tolerance)
	assert.Equal(t, 0.0, aim.Z)
}

// TestTotalFlightTime tests flight time and its guard
func TestTotalFlightTime(t *testing.T) {
	tests := []struct {
		name     string
		velocity float64
		expected float64
	}{
		{"fastball", 95, 0.43411},
		{"curveball", 75, 0.54988},
		{"zero", 0, 0},
		{"negative", -90, 0},
		{"nan", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TotalFlightTime(tt.velocity), 1e-4)
		})
	}
}

// TestInvalidVelocity tests that a non-flying pitch stays at release
func TestInvalidVelocity(t *testing.T) {
	p := fastball()
	p.Velocity = 0

	err := Validate(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidVelocity))

	for _, ti := range []float64{0, 0.2, 1} {
		pos := Position(p, ti, models.DefaultTarget())
		assert.Equal(t, p.Release, pos)
		assert.False(t, math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z))
	}

	assert.NoError(t, Validate(fastball()))
}

func TestValidateRelease(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *models.Pitch)
	}{
		{"release behind the plate", func(p *models.Pitch) { p.Release.Z = -4 }},
		{"release off the extension", func(p *models.Pitch) { p.Release.Z = 50 }},
		{"zero extension", func(p *models.Pitch) { p.Extension = 0; p.Release.Z = MoundDistance }},
		{"extension past the plate", func(p *models.Pitch) { p.Extension = 61; p.Release.Z = -0.5 }},
		{"non-finite height", func(p *models.Pitch) { p.Release.Y = math.NaN() }},
		{"infinite side", func(p *models.Pitch) { p.Release.X = math.Inf(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fastball()
			tt.modify(&p)
			err := Validate(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRelease))
		})
	}

	for _, p := range testPitches() {
		assert.NoError(t, Validate(p), p.Code)
	}
}

func TestPositionDoesNotMutateInputs(t *testing.T) {
	p := fastball()
	before := p
	target := models.NewTarget(0.2, 2.0)

	Position(p, 0.2, target)
	BuildTrail(p, target, 10)

	assert.Equal(t, before, p)
	assert.Equal(t, models.NewTarget(0.2, 2.0), target)
}

// TestBuildTrail tests trail sampling and the decision point split
func TestBuildTrail(t *testing.T) {
	p := fastball()
	target := models.NewTarget(-0.4, 2.2)

	trail := BuildTrail(p, target, 50)
	require.Len(t, trail.Points, 51)
	assert.Equal(t, p.Release, trail.Points[0])
	assertPointNear(t, target, trail.Points[50], tolerance)
	assert.Equal(t, models.DisplayColor(p.Code), trail.Color)
	assert.InDelta(t, TotalFlightTime(p.Velocity), trail.FlightTime, 1e-12)

	require.Greater(t, trail.Split, 0)
	require.Less(t, trail.Split, len(trail.Points))
	assert.Less(t, trail.Points[trail.Split].Z, DecisionPointZ)
	assert.GreaterOrEqual(t, trail.Points[trail.Split-1].Z, DecisionPointZ)

	assert.Len(t, BuildTrail(p, target, 0).Points, DefaultTrailSamples+1)
}
