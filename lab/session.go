// Package lab holds the state of an interactive pitch lab: the selected
// pitcher, which of the pitcher's pitches are shown, where each one is aimed
// and the animation clock that replays a throw.
package lab

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/nermal1/MLB-Pitcher-Market-Value/arsenal"
	"github.com/nermal1/MLB-Pitcher-Market-Value/clock"
	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
	"github.com/nermal1/MLB-Pitcher-Market-Value/physics"
	"github.com/nermal1/MLB-Pitcher-Market-Value/tunnel"
)

var (
	// ErrUnknownPitch is returned for a pitch code the selected pitcher does not throw
	ErrUnknownPitch = errors.New("pitch not in arsenal")
	// ErrInvalidTarget is returned for non-finite target coordinates
	ErrInvalidTarget = errors.New("target coordinates must be finite")
)

const (
	// DefaultFPS is the replay frame rate when none is given
	DefaultFPS = 60
	// MaxFPS bounds the replay frame rate
	MaxFPS = 240
	// MaxReplayFrames bounds the frames one throw renders, the starting frame included
	MaxReplayFrames = 2000

	// maxReplayStep bounds the real time between two replay frames
	maxReplayStep = time.Hour
)

// Session is one user's lab. All methods are safe for concurrent use.
type Session struct {
	ID string

	mu        sync.Mutex
	extractor *arsenal.Extractor
	pitcher   string
	arsenal   arsenal.Arsenal
	active    map[string]bool
	targets   map[string]models.Point3D
	src       *clock.ManualSource
	clock     *clock.Clock
	published []float64
	created   time.Time
	updated   time.Time
}

// NewSession creates an empty session. A nil extractor uses the default
// extraction policy.
func NewSession(id string, extractor *arsenal.Extractor) *Session {
	if extractor == nil {
		extractor = arsenal.NewExtractor(arsenal.DefaultConfig())
	}
	now := time.Now()
	s := &Session{
		ID:        id,
		extractor: extractor,
		active:    make(map[string]bool),
		targets:   make(map[string]models.Point3D),
		src:       clock.NewManualSource(now),
		created:   now,
		updated:   now,
	}
	s.clock = clock.New(s.src)
	s.clock.Subscribe(func(elapsed float64) {
		s.published = append(s.published, elapsed)
	})
	return s
}

// SelectPitcher replaces the arsenal with the one extracted from rec,
// activates every pitch and clears all targets
func (s *Session) SelectPitcher(name string, rec models.Record) arsenal.Arsenal {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pitcher = name
	s.arsenal = s.extractor.Extract(rec)
	s.active = make(map[string]bool, len(s.arsenal.Pitches))
	for _, p := range s.arsenal.Pitches {
		s.active[p.Code] = true
	}
	s.targets = make(map[string]models.Point3D)
	s.clock.Stop()
	s.touch()
	return s.arsenal
}

// Pitcher returns the selected pitcher's name
func (s *Session) Pitcher() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitcher
}

// Arsenal returns the selected pitcher's arsenal
func (s *Session) Arsenal() arsenal.Arsenal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arsenal
}

// Toggle flips whether a pitch is shown and returns the new state
func (s *Session) Toggle(code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.arsenal.Find(code); !ok {
		return false, fmt.Errorf("%s: %w", code, ErrUnknownPitch)
	}
	s.active[code] = !s.active[code]
	s.touch()
	return s.active[code], nil
}

// SetTarget aims a pitch at (x, y) on the plate. Z is always 0.
func (s *Session) SetTarget(code string, x, y float64) (models.Point3D, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.arsenal.Find(code); !ok {
		return models.Point3D{}, fmt.Errorf("%s: %w", code, ErrUnknownPitch)
	}
	if !finite(x) || !finite(y) {
		return models.Point3D{}, ErrInvalidTarget
	}
	target := models.NewTarget(x, y)
	s.targets[code] = target
	s.touch()
	return target, nil
}

// ClearTarget returns a pitch to the default target
func (s *Session) ClearTarget(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.arsenal.Find(code); !ok {
		return fmt.Errorf("%s: %w", code, ErrUnknownPitch)
	}
	delete(s.targets, code)
	s.touch()
	return nil
}

// TargetFor returns where a pitch is aimed. Pitches without a placed
// target aim at the middle of the zone.
func (s *Session) TargetFor(code string) models.Point3D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetFor(code)
}

func (s *Session) targetFor(code string) models.Point3D {
	if t, ok := s.targets[code]; ok {
		return t
	}
	return models.DefaultTarget()
}

// SetSpeed changes the replay speed
func (s *Session) SetSpeed(speed float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.clock.SetSpeed(speed); err != nil {
		return err
	}
	s.touch()
	return nil
}

// Speed returns the replay speed
func (s *Session) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Speed()
}

// ActivePitches returns the shown pitches in arsenal order
func (s *Session) ActivePitches() []models.Pitch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePitches()
}

func (s *Session) activePitches() []models.Pitch {
	pitches := make([]models.Pitch, 0, len(s.arsenal.Pitches))
	for _, p := range s.arsenal.Pitches {
		if s.active[p.Code] {
			pitches = append(pitches, p)
		}
	}
	return pitches
}

// Tunnel measures the first two shown pitches. It returns nil when fewer
// than two are shown.
func (s *Session) Tunnel() *tunnel.Metric {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tunnel()
}

func (s *Session) tunnel() *tunnel.Metric {
	active := s.activePitches()
	aimed := make([]tunnel.Aimed, len(active))
	for i, p := range active {
		aimed[i] = tunnel.Aimed{Pitch: p, Target: s.targetFor(p.Code)}
	}
	return tunnel.Analyze(aimed)
}

// Trails samples the path of every shown pitch
func (s *Session) Trails(samples int) []physics.Trail {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.activePitches()
	trails := make([]physics.Trail, len(active))
	for i, p := range active {
		trails[i] = physics.BuildTrail(p, s.targetFor(p.Code), samples)
	}
	return trails
}

// Ball is one pitch's position in a frame
type Ball struct {
	Code     string         `json:"code"`
	Color    string         `json:"color"`
	Position models.Point3D `json:"position"`
	Visible  bool           `json:"visible"`
}

// Frame is every shown ball at one instant
type Frame struct {
	Elapsed float64 `json:"elapsed"`
	Balls   []Ball  `json:"balls"`
}

// Frame positions every shown ball at t simulated seconds. A ball is shown
// from release until t passes its own flight time.
func (s *Session) Frame(t float64) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame(t)
}

func (s *Session) frame(t float64) Frame {
	active := s.activePitches()
	balls := make([]Ball, len(active))
	for i, p := range active {
		balls[i] = Ball{
			Code:     p.Code,
			Color:    models.DisplayColor(p.Code),
			Position: physics.Position(p, t, s.targetFor(p.Code)),
			Visible:  t >= 0 && t <= physics.TotalFlightTime(p.Velocity),
		}
	}
	return Frame{Elapsed: t, Balls: balls}
}

// Replay is a throw rendered frame by frame. Interval is the real time
// between frames and Wall the real duration of the replay, both in seconds.
// Truncated is set when the playback speed is too slow for the throw to
// finish within MaxReplayFrames.
type Replay struct {
	FPS       int     `json:"fps"`
	Speed     float64 `json:"speed"`
	Interval  float64 `json:"interval"`
	Wall      float64 `json:"wall"`
	Truncated bool    `json:"truncated,omitempty"`
	Frames    []Frame `json:"frames"`
}

// replayStep returns the real time between replay frames: one frame at fps,
// widened when a slow speed would need more than MaxReplayFrames frames to
// reach the ceiling.
func replayStep(fps int, speed, ceiling float64) time.Duration {
	dt := time.Second / time.Duration(fps)

	// two frames are reserved for the start and for rounding of the last tick
	need := ceiling / speed / float64(MaxReplayFrames-2)
	if need >= maxReplayStep.Seconds() {
		return maxReplayStep
	}
	if step := time.Duration(math.Ceil(need * float64(time.Second))); step > dt {
		dt = step
	}
	return dt
}

// Throw runs the session clock from zero until it returns to idle and
// renders a frame for every tick. Throwing again restarts the clock.
func (s *Session) Throw(fps int) Replay {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fps <= 0 {
		fps = DefaultFPS
	}
	if fps > MaxFPS {
		fps = MaxFPS
	}
	dt := replayStep(fps, s.clock.Speed(), s.clock.Ceiling())

	s.published = s.published[:0]
	s.clock.Start()
	frames := []Frame{s.frame(0)}
	ticks := 0
	for s.clock.IsRunning() && ticks < MaxReplayFrames-1 {
		s.src.Advance(dt)
		s.clock.Tick()
		ticks++
	}

	published := s.published
	truncated := s.clock.IsRunning()
	if truncated {
		s.clock.Stop()
	} else {
		// the last published value is the reset to zero
		published = published[:len(published)-1]
	}
	for _, elapsed := range published {
		frames = append(frames, s.frame(elapsed))
	}
	s.touch()

	return Replay{
		FPS:       fps,
		Speed:     s.clock.Speed(),
		Interval:  dt.Seconds(),
		Wall:      (time.Duration(ticks) * dt).Seconds(),
		Truncated: truncated,
		Frames:    frames,
	}
}

// PitchState is a pitch of the arsenal with its lab settings
type PitchState struct {
	models.Pitch
	Color     string         `json:"color"`
	Name      string         `json:"name"`
	Active    bool           `json:"active"`
	Target    models.Point3D `json:"target"`
	HasTarget bool           `json:"has_target"`
}

// Snapshot is the full state of a session
type Snapshot struct {
	ID           string         `json:"id"`
	Pitcher      string         `json:"pitcher,omitempty"`
	IsLeftHanded bool           `json:"is_left_handed"`
	Pitches      []PitchState   `json:"pitches"`
	Speed        float64        `json:"speed"`
	Clock        string         `json:"clock"`
	Tunnel       *tunnel.Metric `json:"tunnel"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Snapshot captures the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	pitches := make([]PitchState, len(s.arsenal.Pitches))
	for i, p := range s.arsenal.Pitches {
		_, has := s.targets[p.Code]
		pitches[i] = PitchState{
			Pitch:     p,
			Color:     models.DisplayColor(p.Code),
			Name:      models.PitchName(p.Code),
			Active:    s.active[p.Code],
			Target:    s.targetFor(p.Code),
			HasTarget: has,
		}
	}

	return Snapshot{
		ID:           s.ID,
		Pitcher:      s.pitcher,
		IsLeftHanded: s.arsenal.IsLeftHanded,
		Pitches:      pitches,
		Speed:        s.clock.Speed(),
		Clock:        s.clock.State().String(),
		Tunnel:       s.tunnel(),
		CreatedAt:    s.created,
		UpdatedAt:    s.updated,
	}
}

func (s *Session) touch() {
	s.updated = time.Now()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
