package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nermal1/MLB-Pitcher-Market-Value/clock"
	"github.com/nermal1/MLB-Pitcher-Market-Value/lab"
	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
	"github.com/nermal1/MLB-Pitcher-Market-Value/physics"
	"github.com/nermal1/MLB-Pitcher-Market-Value/tunnel"
)

// maxTrailSamples bounds the segments a trail request may ask for
const maxTrailSamples = 500

func (s *Server) getArsenalHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(mux.Vars(r)["name"])
	if name == "" {
		writeError(w, "Pitcher name is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	rec, err := s.source.FindPitcher(ctx, name)
	if err != nil {
		writeSourceError(w, err, "find pitcher")
		return
	}

	a := s.extractor.Extract(rec)
	pitches := make([]PitchView, len(a.Pitches))
	for i, p := range a.Pitches {
		pitches[i] = PitchView{
			Pitch: p,
			Name:  models.PitchName(p.Code),
			Color: models.DisplayColor(p.Code),
		}
	}

	writeJSON(w, ArsenalResponse{
		Pitcher:      rec.Name(),
		Team:         rec.String("Team"),
		Hand:         a.Hand(),
		IsLeftHanded: a.IsLeftHanded,
		Pitches:      pitches,
	})
}

func (s *Server) getPitchTypesHandler(w http.ResponseWriter, r *http.Request) {
	codes := models.KnownPitchCodes()
	types := make([]PitchTypeInfo, len(codes))
	for i, code := range codes {
		red, green, blue := models.PitchRGB(code)
		types[i] = PitchTypeInfo{
			Code:  code,
			Name:  models.PitchName(code),
			Color: models.DisplayColor(code),
			RGB:   [3]uint8{red, green, blue},
		}
	}
	writeJSON(w, types)
}

func (s *Server) trajectoryHandler(w http.ResponseWriter, r *http.Request) {
	var req TrajectoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Samples < 0 || req.Samples > maxTrailSamples {
		writeError(w, fmt.Sprintf("samples must be between 1 and %d", maxTrailSamples), http.StatusBadRequest)
		return
	}
	if err := physics.Validate(req.Pitch); err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	target := req.Target.Point()
	writeJSON(w, TrajectoryResponse{
		Trail:         physics.BuildTrail(req.Pitch, target, req.Samples),
		AimPoint:      physics.AimPoint(req.Pitch, target),
		DecisionPoint: tunnel.PositionAtDecisionPoint(req.Pitch, target),
	})
}

func (s *Server) tunnelHandler(w http.ResponseWriter, r *http.Request) {
	var req TunnelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, p := range []models.Pitch{req.A.Pitch, req.B.Pitch} {
		if err := physics.Validate(p); err != nil {
			writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
	}

	m := tunnel.Separation(req.A.Pitch, req.A.Target.Point(), req.B.Pitch, req.B.Target.Point())
	writeJSON(w, TunnelResponse{Tunnel: &m, Active: 2})
}

// Session handlers

// session looks up the session named in the path, writing a 404 when it is gone
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*lab.Session, bool) {
	sess, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// writeLabError maps a session operation failure to a response
func writeLabError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lab.ErrUnknownPitch):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, lab.ErrInvalidTarget), errors.Is(err, clock.ErrInvalidSpeed):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func pitchCode(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(mux.Vars(r)["code"]))
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := s.sessions.Create()
	if name := strings.TrimSpace(req.Pitcher); name != "" {
		ctx, cancel := contextWithTimeout(r.Context())
		defer cancel()

		rec, err := s.source.FindPitcher(ctx, name)
		if err != nil {
			_ = s.sessions.Delete(sess.ID)
			writeSourceError(w, err, "find pitcher")
			return
		}
		sess.SelectPitcher(rec.Name(), rec)
	}

	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID)
	writeJSONStatus(w, sess.Snapshot(), http.StatusCreated)
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, sess.Snapshot())
}

func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) selectPitcherHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req SelectPitcherRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, "Pitcher name is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	rec, err := s.source.FindPitcher(ctx, req.Name)
	if err != nil {
		writeSourceError(w, err, "find pitcher")
		return
	}
	sess.SelectPitcher(rec.Name(), rec)
	writeJSON(w, sess.Snapshot())
}

func (s *Server) togglePitchHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	code := pitchCode(r)
	active, err := sess.Toggle(code)
	if err != nil {
		writeLabError(w, err)
		return
	}
	writeJSON(w, ToggleResponse{Code: code, Active: active})
}

func (s *Server) setTargetHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req TargetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	code := pitchCode(r)
	target, err := sess.SetTarget(code, req.X, req.Y)
	if err != nil {
		writeLabError(w, err)
		return
	}
	writeJSON(w, TargetResponse{Code: code, Target: target})
}

func (s *Server) clearTargetHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	code := pitchCode(r)
	if err := sess.ClearTarget(code); err != nil {
		writeLabError(w, err)
		return
	}
	writeJSON(w, TargetResponse{Code: code, Target: sess.TargetFor(code)})
}

func (s *Server) setSpeedHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req SpeedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := sess.SetSpeed(req.Speed); err != nil {
		writeLabError(w, err)
		return
	}
	writeJSON(w, SpeedRequest{Speed: sess.Speed()})
}

func (s *Server) sessionTunnelHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, TunnelResponse{
		Tunnel: sess.Tunnel(),
		Active: len(sess.ActivePitches()),
	})
}

func (s *Server) sessionTrailsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	samples := parseIntParam(r.URL.Query().Get("samples"), physics.DefaultTrailSamples)
	if samples < 1 || samples > maxTrailSamples {
		writeError(w, fmt.Sprintf("samples must be between 1 and %d", maxTrailSamples), http.StatusBadRequest)
		return
	}
	writeJSON(w, sess.Trails(samples))
}

func (s *Server) sessionFrameHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	t, err := parseFloatParam(r.URL.Query().Get("t"), 0)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, sess.Frame(t))
}

func (s *Server) throwHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	fps := parseIntParam(r.URL.Query().Get("fps"), lab.DefaultFPS)
	writeJSON(w, sess.Throw(fps))
}
