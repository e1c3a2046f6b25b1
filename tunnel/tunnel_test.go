package tunnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
	"github.com/nermal1/MLB-Pitcher-Market-Value/physics"
)

func fourSeam() models.Pitch {
	return models.Pitch{
		Code:            models.PitchFourSeam,
		Velocity:        95.5,
		Extension:       6.6,
		HorizontalBreak: 0.55,
		VerticalBreak:   1.35,
		Release:         models.NewPoint3D(1.9, 5.9, physics.MoundDistance-6.6),
	}
}

func slider() models.Pitch {
	return models.Pitch{
		Code:            models.PitchSlider,
		Velocity:        86.0,
		Extension:       6.4,
		HorizontalBreak: -0.45,
		VerticalBreak:   0.1,
		Release:         models.NewPoint3D(1.95, 5.85, physics.MoundDistance-6.4),
	}
}

func TestCrossingFraction(t *testing.T) {
	p := fourSeam()
	assert.InDelta(t, (53.9-23.8)/53.9, CrossingFraction(p), 1e-12)

	p.Release.Z = 20
	assert.Equal(t, 0.0, CrossingFraction(p))
}

// TestPositionAtDecisionPoint tests that the sampled point sits on the decision plane
func TestPositionAtDecisionPoint(t *testing.T) {
	for _, p := range []models.Pitch{fourSeam(), slider()} {
		pos := PositionAtDecisionPoint(p, models.DefaultTarget())
		assert.InDelta(t, DecisionPointZ, pos.Z, 1e-9, p.Code)
	}
}

// TestSeparationSymmetric tests that swapping the pitches does not change the metric
func TestSeparationSymmetric(t *testing.T) {
	targets := []models.Point3D{
		models.DefaultTarget(),
		models.NewTarget(0.6, 1.7),
		models.NewTarget(-0.8, 3.3),
	}

	for _, ta := range targets {
		for _, tb := range targets {
			ab := Separation(fourSeam(), ta, slider(), tb)
			ba := Separation(slider(), tb, fourSeam(), ta)
			assert.Equal(t, ab.SeparationInches, ba.SeparationInches)
			assert.Equal(t, ab.IsGood, ba.IsGood)
			assert.Equal(t, ab.Midpoint, ba.Midpoint)
		}
	}
}

func TestSeparationIdentical(t *testing.T) {
	m := Separation(fourSeam(), models.DefaultTarget(), fourSeam(), models.DefaultTarget())
	assert.Equal(t, 0.0, m.SeparationInches)
	assert.True(t, m.IsGood)
	assert.Equal(t, PositionAtDecisionPoint(fourSeam(), models.DefaultTarget()), m.Midpoint)
}

// TestSeparationThreshold tests classification just under and over six inches.
// Two copies of one pitch aimed at targets dx apart are separated by
// dx * fraction at the decision point.
func TestSeparationThreshold(t *testing.T) {
	p := fourSeam()
	frac := CrossingFraction(p)
	require.Greater(t, frac, 0.0)

	tests := []struct {
		inches float64
		good   bool
	}{
		{5.9, true},
		{6.1, false},
	}

	for _, tt := range tests {
		dx := tt.inches / 12 / frac
		base := models.NewTarget(-0.3, 2.4)
		shifted := models.NewTarget(base.X+dx, base.Y)

		m := Separation(p, base, p, shifted)
		assert.InDelta(t, tt.inches, m.SeparationInches, 1e-6)
		assert.Equal(t, tt.good, m.IsGood, "%.1f inches", tt.inches)
	}
}

func TestAnalyze(t *testing.T) {
	assert.Nil(t, Analyze(nil))
	assert.Nil(t, Analyze([]Aimed{{Pitch: fourSeam(), Target: models.DefaultTarget()}}))

	active := []Aimed{
		{Pitch: fourSeam(), Target: models.DefaultTarget()},
		{Pitch: slider(), Target: models.NewTarget(0.9, 1.6)},
		{Pitch: slider(), Target: models.NewTarget(-5, -5)},
	}
	m := Analyze(active)
	require.NotNil(t, m)
	assert.Equal(t, Separation(active[0].Pitch, active[0].Target, active[1].Pitch, active[1].Target), *m)
	assert.Greater(t, m.SeparationInches, 0.0)
}
