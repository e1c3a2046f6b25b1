package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecordFloat tests tolerant numeric reads
func TestRecordFloat(t *testing.T) {
	rec := Record{
		"float":   95.4,
		"int":     6,
		"string":  " 2.5 ",
		"number":  json.Number("1.75"),
		"bad":     "n/a",
		"nan":     math.NaN(),
		"nil":     nil,
		"boolean": true,
	}

	tests := []struct {
		key      string
		expected float64
		ok       bool
	}{
		{"float", 95.4, true},
		{"int", 6, true},
		{"string", 2.5, true},
		{"number", 1.75, true},
		{"bad", 0, false},
		{"nan", 0, false},
		{"nil", 0, false},
		{"boolean", 0, false},
		{"missing", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := rec.Float(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}

	assert.Equal(t, 6.0, rec.FloatOr("missing", 6.0))
	assert.Equal(t, 95.4, rec.FloatOr("float", 6.0))
}

func TestRecordString(t *testing.T) {
	rec := Record{"Name": "Tarik Skubal", "Team": nil, "MLBID": 669373.0}

	assert.Equal(t, "Tarik Skubal", rec.Name())
	assert.Equal(t, "", rec.String("Team"))
	assert.Equal(t, "669373", rec.String("MLBID"))
	assert.Equal(t, "", rec.String("missing"))
}

// TestDisplayColor tests the pitch color table and its fallback
func TestDisplayColor(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"FF", "#d946ef"},
		{"FA", "#d946ef"},
		{"SL", "#f59e0b"},
		{"CH", "#10b981"},
		{"CU", "#06b6d4"},
		{"SI", "#e879f9"},
		{"FC", "#9333ea"},
		{"FS", "#3b82f6"},
		{"KN", "#94a3b8"},
		{"ff", "#d946ef"},
		{"EP", FallbackColor},
		{"", FallbackColor},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayColor(tt.code))
		})
	}
}

func TestPitchRGB(t *testing.T) {
	r, g, b := PitchRGB(PitchChangeup)
	assert.Equal(t, uint8(0x10), r)
	assert.Equal(t, uint8(0xb9), g)
	assert.Equal(t, uint8(0x81), b)

	r, g, b = PitchRGB("XX")
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})
}

func TestPitchName(t *testing.T) {
	assert.Equal(t, "Four-Seam", PitchName("FF"))
	assert.Equal(t, "Knuckle-Curve", PitchName("KC"))
	assert.Equal(t, "EP", PitchName("EP"))
}

func TestKnownPitchCodesSorted(t *testing.T) {
	codes := KnownPitchCodes()
	require.Len(t, codes, len(pitchColors))
	assert.IsIncreasing(t, codes)
}

// TestPointOps tests the vector helpers used by the trajectory model
func TestPointOps(t *testing.T) {
	a := NewPoint3D(1, 2, 3)
	b := NewPoint3D(4, 6, 3)

	assert.Equal(t, NewPoint3D(5, 8, 6), a.Add(b))
	assert.Equal(t, NewPoint3D(-3, -4, 0), a.Sub(b))
	assert.Equal(t, NewPoint3D(2, 4, 6), a.Mul(2))
	assert.Equal(t, 5.0, a.DistanceTo(b))
	assert.Equal(t, a.DistanceTo(b), b.DistanceTo(a))
	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
	assert.Equal(t, a.Midpoint(b), b.Midpoint(a))
	assert.Equal(t, NewPoint3D(2.5, 4, 3), a.Midpoint(b))
}

func TestTargets(t *testing.T) {
	assert.Equal(t, Point3D{X: 0, Y: 2.5, Z: 0}, DefaultTarget())
	assert.Equal(t, 0.0, NewTarget(0.4, 3.1).Z)
}

func TestNewPitcherPage(t *testing.T) {
	page := NewPitcherPage(nil, 120, 50, 50)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Pages)
	assert.NotNil(t, page.Data)

	empty := NewPitcherPage(nil, 0, 0, 50)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 0, empty.Pages)
}

// TestGraphNodeJSON tests that metric columns ride next to the fixed fields
func TestGraphNodeJSON(t *testing.T) {
	raw := `{"id":"Zack Wheeler","lastName":"Wheeler","mlbId":554430,"group":"Power Starter","val":5.4,"team":"PHI","K%":0.27,"Stuff+":108}`

	var node GraphNode
	require.NoError(t, json.Unmarshal([]byte(raw), &node))
	assert.Equal(t, "Zack Wheeler", node.ID)
	assert.Equal(t, 554430, node.MLBID)
	assert.Equal(t, map[string]float64{"K%": 0.27, "Stuff+": 108}, node.Metrics)

	out, err := json.Marshal(node)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}
