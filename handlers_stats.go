package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
)

// writeSourceError maps a record source failure to a response. Unknown
// pitchers are 404; anything else means the upstream failed.
func writeSourceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, models.ErrPitcherNotFound):
		writeError(w, "Pitcher not found", http.StatusNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("Failed to %s: %v", action, err)
		writeError(w, "Upstream timed out", http.StatusGatewayTimeout)
	default:
		log.Printf("Failed to %s: %v", action, err)
		writeErrorWithDetails(w, "Failed to "+action, "upstream_error",
			map[string]interface{}{"reason": err.Error()}, http.StatusBadGateway)
	}
}

func (s *Server) getPitchersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	page, err := s.source.ListPitchers(ctx, parsePitcherQuery(r))
	if err != nil {
		writeSourceError(w, err, "list pitchers")
		return
	}
	writeJSON(w, page)
}

func (s *Server) getArchetypesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	archetypes, err := s.source.Archetypes(ctx)
	if err != nil {
		writeSourceError(w, err, "list archetypes")
		return
	}
	writeJSON(w, archetypes)
}

func (s *Server) getSimilarHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(mux.Vars(r)["name"])
	if name == "" {
		writeError(w, "Pitcher name is required", http.StatusBadRequest)
		return
	}
	if s.similarity == nil {
		writeError(w, "Similarity search is not available", http.StatusNotImplemented)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	similar, err := s.similarity.Similar(ctx, name)
	if err != nil {
		writeSourceError(w, err, "find similar pitchers")
		return
	}
	writeJSON(w, similar)
}

func (s *Server) getGraphHandler(w http.ResponseWriter, r *http.Request) {
	if s.similarity == nil {
		writeError(w, "Similarity graph is not available", http.StatusNotImplemented)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	graph, err := s.similarity.Graph(ctx, parseGraphQuery(r))
	if err != nil {
		writeSourceError(w, err, "build similarity graph")
		return
	}
	writeJSON(w, graph)
}
