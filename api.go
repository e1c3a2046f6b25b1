package main

import (
	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
	"github.com/nermal1/MLB-Pitcher-Market-Value/physics"
	"github.com/nermal1/MLB-Pitcher-Market-Value/tunnel"
)

// APIError represents an API error response
type APIError struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// TargetRequest is a point on the plate. Z is always 0.
type TargetRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point returns the target, or the middle of the zone when t is nil
func (t *TargetRequest) Point() models.Point3D {
	if t == nil {
		return models.DefaultTarget()
	}
	return models.NewTarget(t.X, t.Y)
}

// AimedPitch is a pitch with an optional target
type AimedPitch struct {
	Pitch  models.Pitch   `json:"pitch"`
	Target *TargetRequest `json:"target,omitempty"`
}

// TrajectoryRequest asks for the path of one pitch
type TrajectoryRequest struct {
	AimedPitch
	Samples int `json:"samples,omitempty"`
}

// TrajectoryResponse is a sampled pitch path
type TrajectoryResponse struct {
	physics.Trail
	AimPoint      models.Point3D `json:"aim_point"`
	DecisionPoint models.Point3D `json:"decision_point"`
}

// TunnelRequest asks for the separation of two pitches
type TunnelRequest struct {
	A AimedPitch `json:"a"`
	B AimedPitch `json:"b"`
}

// TunnelResponse carries a tunnel metric, null when fewer than two pitches are shown
type TunnelResponse struct {
	Tunnel *tunnel.Metric `json:"tunnel"`
	Active int            `json:"active"`
}

// PitchView is an arsenal pitch with its display attributes
type PitchView struct {
	models.Pitch
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ArsenalResponse is a pitcher's extracted arsenal
type ArsenalResponse struct {
	Pitcher      string      `json:"pitcher"`
	Team         string      `json:"team,omitempty"`
	Hand         string      `json:"hand"`
	IsLeftHanded bool        `json:"is_left_handed"`
	Pitches      []PitchView `json:"pitches"`
}

// PitchTypeInfo describes one pitch code
type PitchTypeInfo struct {
	Code  string   `json:"code"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
	RGB   [3]uint8 `json:"rgb"`
}

// CreateSessionRequest optionally selects a pitcher for a new session
type CreateSessionRequest struct {
	Pitcher string `json:"pitcher,omitempty"`
}

// SelectPitcherRequest selects a pitcher by name
type SelectPitcherRequest struct {
	Name string `json:"name"`
}

// SpeedRequest sets the replay speed
type SpeedRequest struct {
	Speed float64 `json:"speed"`
}

// ToggleResponse reports whether a pitch is shown
type ToggleResponse struct {
	Code   string `json:"code"`
	Active bool   `json:"active"`
}

// TargetResponse reports where a pitch is aimed
type TargetResponse struct {
	Code   string         `json:"code"`
	Target models.Point3D `json:"target"`
}

// ServiceHealth represents the health of the record source
type ServiceHealth struct {
	Status string `json:"status"`
	Source string `json:"source"`
	Error  string `json:"error,omitempty"`
}
