// Package clock drives pitch animations. A Clock accumulates simulated
// seconds frame by frame, scaled by a playback speed, and returns to idle
// once a fixed ceiling is reached.
//
// A Clock is advanced by its owner once per frame and is not safe for
// concurrent use.
package clock

import (
	"errors"
	"fmt"
	"time"
)

// State is the clock's lifecycle state
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DefaultCeiling is the simulated time after which a throw ends, in
// seconds. It is longer than the flight of the slowest curveball.
const DefaultCeiling = 0.6

// ErrInvalidSpeed is returned for playback speeds outside (0, 1]
var ErrInvalidSpeed = errors.New("playback speed must be in (0, 1]")

// Subscriber receives the elapsed simulated seconds after every frame
type Subscriber func(elapsed float64)

// Clock is the shared animation clock of all active pitches
type Clock struct {
	src     TimeSource
	state   State
	elapsed float64
	speed   float64
	ceiling float64
	last    time.Time
	subs    []Subscriber
}

// Option configures a Clock
type Option func(*Clock)

// WithCeiling overrides DefaultCeiling
func WithCeiling(seconds float64) Option {
	return func(c *Clock) {
		if seconds > 0 {
			c.ceiling = seconds
		}
	}
}

// New creates an idle clock at full speed. A nil source uses the wall clock.
func New(src TimeSource, opts ...Option) *Clock {
	if src == nil {
		src = SystemSource{}
	}
	c := &Clock{
		src:     src,
		state:   Idle,
		speed:   1.0,
		ceiling: DefaultCeiling,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state
func (c *Clock) State() State { return c.state }

// Elapsed returns the simulated seconds since the throw started
func (c *Clock) Elapsed() float64 { return c.elapsed }

// Speed returns the playback speed
func (c *Clock) Speed() float64 { return c.speed }

// Ceiling returns the simulated time at which a throw ends
func (c *Clock) Ceiling() float64 { return c.ceiling }

// IsRunning reports whether a throw is in progress
func (c *Clock) IsRunning() bool { return c.state == Running }

// SetSpeed changes the playback speed. A running throw picks it up on the next frame.
func (c *Clock) SetSpeed(speed float64) error {
	if !(speed > 0 && speed <= 1) {
		return fmt.Errorf("%v: %w", speed, ErrInvalidSpeed)
	}
	c.speed = speed
	return nil
}

// Subscribe registers fn to receive elapsed time after every frame
func (c *Clock) Subscribe(fn Subscriber) {
	if fn != nil {
		c.subs = append(c.subs, fn)
	}
}

// Start begins a throw. Starting while running restarts from zero.
func (c *Clock) Start() {
	c.state = Running
	c.elapsed = 0
	c.last = c.src.Now()
}

// Stop ends the current throw and resets elapsed time
func (c *Clock) Stop() {
	c.state = Idle
	c.elapsed = 0
}

// Tick advances the clock by the real time since the previous frame.
// It returns the published elapsed time.
func (c *Clock) Tick() float64 {
	if c.state != Running {
		return c.elapsed
	}
	now := c.src.Now()
	dt := now.Sub(c.last)
	c.last = now
	return c.step(dt)
}

// Advance runs one frame with a synthetic real-time delta, ignoring the source
func (c *Clock) Advance(dt time.Duration) float64 {
	if c.state != Running {
		return c.elapsed
	}
	c.last = c.last.Add(dt)
	return c.step(dt)
}

func (c *Clock) step(dt time.Duration) float64 {
	if dt < 0 {
		dt = 0
	}
	c.elapsed += dt.Seconds() * c.speed
	c.publish(c.elapsed)

	if c.elapsed >= c.ceiling {
		c.state = Idle
		c.elapsed = 0
		c.publish(0)
	}
	return c.elapsed
}

func (c *Clock) publish(elapsed float64) {
	for _, fn := range c.subs {
		fn(elapsed)
	}
}
