package models

import (
	"errors"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrPitcherNotFound is returned by record sources when no pitcher matches
var ErrPitcherNotFound = errors.New("pitcher not found")

// Pitch type codes
const (
	PitchFourSeam     = "FF"
	PitchFastball     = "FA"
	PitchSlider       = "SL"
	PitchSweeper      = "ST"
	PitchChangeup     = "CH"
	PitchCurve        = "CU"
	PitchKnuckleCurve = "KC"
	PitchSinker       = "SI"
	PitchCutter       = "FC"
	PitchCutterAlt    = "CT"
	PitchSplitter     = "FS"
	PitchForkball     = "FO"
	PitchKnuckleball  = "KN"
)

// Throwing hands
const (
	HandLeft  = "L"
	HandRight = "R"
)

// FallbackColor is the display color for unrecognized pitch codes
const FallbackColor = "#ffffff"

// Pitch is one pitch type in a pitcher's arsenal, derived from season averages.
// Breaks are total induced movement over the whole flight, in feet.
type Pitch struct {
	Code            string  `json:"code"`
	Velocity        float64 `json:"velocity"`         // mph
	SpinRate        float64 `json:"spin_rate"`        // rpm, 0 when unknown
	Extension       float64 `json:"extension"`        // feet in front of the rubber
	HorizontalBreak float64 `json:"horizontal_break"` // feet, display sign convention
	VerticalBreak   float64 `json:"vertical_break"`   // feet, positive is up
	Release         Point3D `json:"release"`
	ArmAngle        float64 `json:"arm_angle"` // degrees, display only
	Hand            string  `json:"hand"`      // "L" or "R"
}

// IsLeftHanded reports whether the pitch was thrown by a left-hander
func (p Pitch) IsLeftHanded() bool {
	return p.Hand == HandLeft
}

var pitchColors = map[string]string{
	PitchFourSeam:     "#d946ef",
	PitchFastball:     "#d946ef",
	PitchSlider:       "#f59e0b",
	PitchSweeper:      "#f59e0b",
	PitchChangeup:     "#10b981",
	PitchCurve:        "#06b6d4",
	PitchKnuckleCurve: "#06b6d4",
	PitchSinker:       "#e879f9",
	PitchCutter:       "#9333ea",
	PitchCutterAlt:    "#9333ea",
	PitchSplitter:     "#3b82f6",
	PitchForkball:     "#3b82f6",
	PitchKnuckleball:  "#94a3b8",
}

var pitchNames = map[string]string{
	PitchFourSeam:     "Four-Seam",
	PitchFastball:     "Fastball",
	PitchSlider:       "Slider",
	PitchSweeper:      "Sweeper",
	PitchChangeup:     "Changeup",
	PitchCurve:        "Curve",
	PitchKnuckleCurve: "Knuckle-Curve",
	PitchSinker:       "Sinker",
	PitchCutter:       "Cutter",
	PitchCutterAlt:    "Cutter",
	PitchSplitter:     "Splitter",
	PitchForkball:     "Forkball",
	PitchKnuckleball:  "Knuckleball",
}

// DisplayColor returns the hex color token for a pitch code.
// Unknown codes get FallbackColor.
func DisplayColor(code string) string {
	if c, ok := pitchColors[strings.ToUpper(code)]; ok {
		return c
	}
	return FallbackColor
}

// PitchName returns the display name for a pitch code, or the code itself
// when it is not recognized
func PitchName(code string) string {
	if n, ok := pitchNames[strings.ToUpper(code)]; ok {
		return n
	}
	return code
}

// PitchRGB returns the 8-bit RGB channels of the pitch's display color
func PitchRGB(code string) (r, g, b uint8) {
	c, err := colorful.Hex(DisplayColor(code))
	if err != nil {
		// the table only holds valid tokens
		c, _ = colorful.Hex(FallbackColor)
	}
	return c.RGB255()
}

// KnownPitchCodes returns every code with a display color, sorted
func KnownPitchCodes() []string {
	codes := make([]string, 0, len(pitchColors))
	for code := range pitchColors {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
