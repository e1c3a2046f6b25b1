package lab

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/nermal1/MLB-Pitcher-Market-Value/arsenal"
)

// ErrSessionNotFound is returned for unknown or expired session IDs
var ErrSessionNotFound = errors.New("session not found")

const (
	DefaultSessionLimit = 1000
	DefaultSessionTTL   = 30 * time.Minute
)

// Store keeps a bounded set of sessions. The least recently used session is
// evicted when the store is full, and sessions idle for longer than the TTL
// expire.
type Store struct {
	sessions  *expirable.LRU[string, *Session]
	extractor *arsenal.Extractor
	evictions atomic.Int64
}

// NewStore creates a session store
func NewStore(limit int, ttl time.Duration, extractor *arsenal.Extractor) *Store {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	st := &Store{extractor: extractor}
	st.sessions = expirable.NewLRU[string, *Session](limit, func(string, *Session) {
		st.evictions.Add(1)
	}, ttl)
	return st
}

// Create starts a new empty session
func (st *Store) Create() *Session {
	s := NewSession(uuid.NewString(), st.extractor)
	st.sessions.Add(s.ID, s)
	return s
}

// Get returns a session and resets its idle timer
func (st *Store) Get(id string) (*Session, error) {
	s, ok := st.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	st.sessions.Add(id, s)
	return s, nil
}

// Delete ends a session
func (st *Store) Delete(id string) error {
	if !st.sessions.Remove(id) {
		return ErrSessionNotFound
	}
	return nil
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	return st.sessions.Len()
}

// Evictions returns how many sessions were dropped for capacity, expiry or deletion
func (st *Store) Evictions() int64 {
	return st.evictions.Load()
}
