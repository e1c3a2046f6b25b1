package clock

import (
	"sync"
	"time"
)

// TimeSource provides the current time to a clock
type TimeSource interface {
	Now() time.Time
}

// SystemSource reads the wall clock
type SystemSource struct{}

// Now returns time.Now()
func (SystemSource) Now() time.Time { return time.Now() }

// ManualSource is a time source that only moves when told to. It drives
// server-side replays and tests.
type ManualSource struct {
	mu      sync.RWMutex
	current time.Time
}

// NewManualSource creates a manual source starting at start
func NewManualSource(start time.Time) *ManualSource {
	return &ManualSource{current: start}
}

// Now returns the current manual time
func (m *ManualSource) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Advance moves the manual time forward by d
func (m *ManualSource) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Set jumps to t
func (m *ManualSource) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}
