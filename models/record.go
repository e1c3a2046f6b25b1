package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is one pitcher's flat statistics row as served by the stats backend.
// Values are numbers or strings; any field may be missing.
type Record map[string]interface{}

// Float reads a numeric field. Missing, non-numeric, NaN and infinite
// values report false.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}

	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FloatOr reads a numeric field, returning def when it is unusable
func (r Record) FloatOr(key string, def float64) float64 {
	if f, ok := r.Float(key); ok {
		return f
	}
	return def
}

// String reads a string field
func (r Record) String(key string) string {
	switch val := r[key].(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Name returns the pitcher's display name
func (r Record) Name() string {
	return r.String("Name")
}

// PitcherQuery holds the filter, sort and pagination options of a pitcher list
type PitcherQuery struct {
	Search    string `json:"search,omitempty"`
	Archetype string `json:"archetype,omitempty"`
	Position  string `json:"position,omitempty"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"` // "asc" or "desc"
	Skip      int    `json:"skip"`
	Limit     int    `json:"limit"`
}

// DefaultPitcherQuery returns the list defaults of the stats backend
func DefaultPitcherQuery() PitcherQuery {
	return PitcherQuery{
		SortBy:    "WAR",
		SortOrder: "desc",
		Skip:      0,
		Limit:     50,
	}
}

// PitcherPage is one page of pitcher records
type PitcherPage struct {
	Data  []Record `json:"data"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Pages int      `json:"pages"`
}

// NewPitcherPage computes page numbers the way the stats backend does
func NewPitcherPage(data []Record, total, skip, limit int) PitcherPage {
	if data == nil {
		data = []Record{}
	}
	if limit <= 0 {
		return PitcherPage{Data: data, Total: total, Page: 1, Pages: 1}
	}
	return PitcherPage{
		Data:  data,
		Total: total,
		Page:  skip/limit + 1,
		Pages: (total + limit - 1) / limit,
	}
}

// GraphNode is one pitcher in the similarity graph. Metric values are
// carried in Metrics and flattened into the node on the wire.
type GraphNode struct {
	ID       string             `json:"id"`
	LastName string             `json:"lastName"`
	MLBID    int                `json:"mlbId"`
	Group    string             `json:"group"`
	Val      float64            `json:"val"`
	Team     string             `json:"team"`
	Metrics  map[string]float64 `json:"-"`
}

// MarshalJSON flattens Metrics next to the fixed fields
func (n GraphNode) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(n.Metrics)+6)
	for k, v := range n.Metrics {
		out[k] = v
	}
	out["id"] = n.ID
	out["lastName"] = n.LastName
	out["mlbId"] = n.MLBID
	out["group"] = n.Group
	out["val"] = n.Val
	out["team"] = n.Team
	return json.Marshal(out)
}

// UnmarshalJSON collects every numeric field that is not a fixed field into Metrics
func (n *GraphNode) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rec := Record(raw)
	n.ID = rec.String("id")
	n.LastName = rec.String("lastName")
	n.MLBID = int(rec.FloatOr("mlbId", 0))
	n.Group = rec.String("group")
	n.Val = rec.FloatOr("val", 0)
	n.Team = rec.String("team")
	n.Metrics = make(map[string]float64)
	for k := range raw {
		switch k {
		case "id", "lastName", "mlbId", "group", "val", "team":
			continue
		}
		if f, ok := rec.Float(k); ok {
			n.Metrics[k] = f
		}
	}
	return nil
}

// GraphLink connects two pitchers in the similarity graph
type GraphLink struct {
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	VisualDist float64  `json:"visualDist"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// Graph is the precomputed similarity network
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// GraphQuery selects the metrics and neighbourhood of a similarity graph
type GraphQuery struct {
	Metrics      []string
	Neighbors    int
	TargetPlayer string
}
