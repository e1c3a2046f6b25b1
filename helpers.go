package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
)

const (
	maxPageSize = 2500
	maxBodySize = 1 << 20
)

// parsePitcherQuery extracts list parameters from the request, using the
// backend's defaults for anything missing or malformed
func parsePitcherQuery(r *http.Request) models.PitcherQuery {
	q := models.DefaultPitcherQuery()
	values := r.URL.Query()

	q.Search = sanitizeStringParam(values.Get("search"))
	q.Archetype = values.Get("archetype")
	q.Position = values.Get("position")

	if sortBy := values.Get("sort_by"); sortBy != "" {
		q.SortBy = sortBy
	}
	if strings.ToLower(values.Get("sort_order")) == "asc" {
		q.SortOrder = "asc"
	}

	q.Skip = parseIntParam(values.Get("skip"), 0)
	if q.Skip < 0 {
		q.Skip = 0
	}
	if limit := parseIntParam(values.Get("limit"), q.Limit); limit > 0 && limit <= maxPageSize {
		q.Limit = limit
	}
	return q
}

// parseGraphQuery extracts similarity graph parameters
func parseGraphQuery(r *http.Request) models.GraphQuery {
	values := r.URL.Query()
	q := models.GraphQuery{
		Neighbors:    parseIntParam(values.Get("neighbors"), 5),
		TargetPlayer: strings.TrimSpace(values.Get("target_player")),
	}
	for _, m := range values["metrics"] {
		if m = strings.TrimSpace(m); m != "" {
			q.Metrics = append(q.Metrics, m)
		}
	}
	if q.Neighbors < 1 || q.Neighbors > 50 {
		q.Neighbors = 5
	}
	return q
}

// parseIntParam parses an integer parameter with a default
func parseIntParam(param string, defaultValue int) int {
	if param == "" {
		return defaultValue
	}
	if val, err := strconv.Atoi(param); err == nil {
		return val
	}
	return defaultValue
}

// parseFloatParam parses a finite float parameter
func parseFloatParam(param string, defaultValue float64) (float64, error) {
	if param == "" {
		return defaultValue, nil
	}
	val, err := strconv.ParseFloat(param, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("invalid number: %q", param)
	}
	return val, nil
}

// sanitizeStringParam trims a free text parameter and bounds its length
func sanitizeStringParam(param string) string {
	param = strings.TrimSpace(param)
	if len(param) > 100 {
		param = param[:100]
	}
	return param
}

// decodeJSON reads a bounded JSON body. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeJSON writes data with a 200 status
func writeJSON(w http.ResponseWriter, data interface{}) {
	writeJSONStatus(w, data, http.StatusOK)
}

// writeJSONStatus writes data with the given status
func writeJSONStatus(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
	}
}

// writeError writes an error response
func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONStatus(w, APIError{Error: message}, statusCode)
}

// writeErrorWithDetails writes an error response with additional details
func writeErrorWithDetails(w http.ResponseWriter, message, code string, details map[string]interface{}, statusCode int) {
	writeJSONStatus(w, APIError{
		Error:   message,
		Code:    code,
		Details: details,
	}, statusCode)
}

// contextWithTimeout creates a context with a default timeout
func contextWithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 10*time.Second)
}
