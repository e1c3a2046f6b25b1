// Package arsenal turns a pitcher's flat statistics record into the list of
// pitches the trajectory model can fly.
package arsenal

import (
	"math"

	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
	"github.com/nermal1/MLB-Pitcher-Market-Value/physics"
)

// PitchType maps a pitch code to the column prefix of its statistics
type PitchType struct {
	Code   string
	Prefix string
}

// PitchTypes lists the pitch types read from a record, in arsenal order
var PitchTypes = []PitchType{
	{Code: models.PitchFourSeam, Prefix: "ff"},
	{Code: models.PitchSlider, Prefix: "sl"},
	{Code: models.PitchChangeup, Prefix: "ch"},
	{Code: models.PitchCurve, Prefix: "cu"},
	{Code: models.PitchSinker, Prefix: "si"},
	{Code: models.PitchCutter, Prefix: "fc"},
	{Code: models.PitchSplitter, Prefix: "fs"},
}

// Column suffixes
const (
	colSpeed    = "_avg_speed"
	colSpin     = "_avg_spin"
	colExt      = "_extension"
	colReleaseX = "_release_x"
	colReleaseZ = "_release_z"
	colBreakX   = "_avg_break_x"
	colBreakZ   = "_avg_break_z"
	colArmAngle = "_arm_angle"

	// pitcher-level arm angle, used when a pitch type has none
	colPitcherArmAngle = "arm_angle"
)

// Arsenal is the set of pitches a pitcher throws. Every pitch carries the
// same hand.
type Arsenal struct {
	Pitches      []models.Pitch `json:"pitches"`
	IsLeftHanded bool           `json:"is_left_handed"`
}

// Hand returns "L" or "R"
func (a Arsenal) Hand() string {
	if a.IsLeftHanded {
		return models.HandLeft
	}
	return models.HandRight
}

// Find returns the pitch with the given code
func (a Arsenal) Find(code string) (models.Pitch, bool) {
	for _, p := range a.Pitches {
		if p.Code == code {
			return p, true
		}
	}
	return models.Pitch{}, false
}

// Codes returns the pitch codes in arsenal order
func (a Arsenal) Codes() []string {
	codes := make([]string, len(a.Pitches))
	for i, p := range a.Pitches {
		codes[i] = p.Code
	}
	return codes
}

// Extractor builds arsenals using a fixed defaulting policy
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor with the given config
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Config returns the extractor's defaulting policy
func (e *Extractor) Config() Config {
	return e.cfg
}

// Extract builds an arsenal with DefaultConfig
func Extract(rec models.Record) Arsenal {
	return NewExtractor(DefaultConfig()).Extract(rec)
}

// Extract builds the arsenal for one pitcher record. Pitch types without a
// positive velocity are left out; a record with none yields an empty arsenal.
func (e *Extractor) Extract(rec models.Record) Arsenal {
	lefty := e.isLeftHanded(rec)
	hand := models.HandRight
	if lefty {
		hand = models.HandLeft
	}

	pitches := make([]models.Pitch, 0, len(PitchTypes))
	for _, pt := range PitchTypes {
		velo, ok := rec.Float(pt.Prefix + colSpeed)
		if !ok || velo <= 0 {
			continue
		}

		ext := rec.FloatOr(pt.Prefix+colExt, e.cfg.DefaultExtension)
		if ext <= 0 || ext >= physics.MoundDistance {
			ext = e.cfg.DefaultExtension
		}

		release := e.releasePoint(rec, pt.Prefix, lefty, ext)

		p := models.Pitch{
			Code:            pt.Code,
			Velocity:        velo,
			SpinRate:        math.Max(0, rec.FloatOr(pt.Prefix+colSpin, 0)),
			Extension:       ext,
			HorizontalBreak: -rec.FloatOr(pt.Prefix+colBreakX, 0) / 12,
			VerticalBreak:   rec.FloatOr(pt.Prefix+colBreakZ, 0) / 12,
			Release:         release,
			ArmAngle:        e.armAngle(release, lefty),
			Hand:            hand,
		}
		if physics.Validate(p) != nil {
			continue
		}
		pitches = append(pitches, p)
	}

	return Arsenal{Pitches: pitches, IsLeftHanded: lefty}
}

// isLeftHanded reads the release side of the first pitch type that has one.
// Release x is from the catcher's view, so a left-hander releases at x > 0.
// Without any release side, a fastball running hard to the arm side of a
// left-hander decides.
func (e *Extractor) isLeftHanded(rec models.Record) bool {
	for _, pt := range PitchTypes {
		if x, ok := rec.Float(pt.Prefix + colReleaseX); ok && x != 0 {
			return x > 0
		}
	}
	return rec.FloatOr("ff"+colBreakX, 0) > e.cfg.LeftyBreakThreshold
}

func side(lefty bool) float64 {
	if lefty {
		return -1
	}
	return 1
}

// releasePoint prefers the measured release and synthesizes one from the
// arm angle when the measured height is missing or implausible
func (e *Extractor) releasePoint(rec models.Record, prefix string, lefty bool, ext float64) models.Point3D {
	z := physics.MoundDistance - ext
	s := side(lefty)

	if height, ok := rec.Float(prefix + colReleaseZ); ok && height > e.cfg.MinReleaseHeight {
		x := s * e.cfg.DefaultReleaseSide
		if rx, ok := rec.Float(prefix + colReleaseX); ok && rx != 0 {
			x = -rx
		}
		return models.Point3D{X: x, Y: height, Z: z}
	}

	angle := e.cfg.DefaultArmAngle
	if a, ok := e.measuredArmAngle(rec, prefix); ok {
		angle = a
	}
	rad := angle * math.Pi / 180
	return models.Point3D{
		X: s * (e.cfg.ShoulderX + e.cfg.ArmLength*math.Cos(rad)),
		Y: e.cfg.ShoulderY + e.cfg.ArmLength*math.Sin(rad),
		Z: z,
	}
}

func (e *Extractor) measuredArmAngle(rec models.Record, prefix string) (float64, bool) {
	for _, key := range []string{prefix + colArmAngle, colPitcherArmAngle} {
		if a, ok := rec.Float(key); ok && a > -90 && a <= 90 {
			return a, true
		}
	}
	return 0, false
}

// armAngle is the angle in degrees between horizontal and the
// shoulder-to-release vector, measured toward the throwing-arm side
func (e *Extractor) armAngle(release models.Point3D, lefty bool) float64 {
	s := side(lefty)
	dx := (release.X - s*e.cfg.ShoulderX) * s
	dy := release.Y - e.cfg.ShoulderY
	return math.Atan2(dy, dx) * 180 / math.Pi
}
