// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is the default session store, used for development/testing or
// when durability is not required.
//
// Characteristics:
//   - Stores copies of *game.Session keyed by ID, so callers never share state.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Entries idle for longer than the TTL are swept on Save.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/numguess/internal/game"
)

// ErrNotFound is returned by Get for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for live game sessions.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session is unknown or expired.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Delete removes a session; deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}

type memEntry struct {
	s       game.Session
	touched time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex         // guards sessions
	sessions map[string]*memEntry // keyed by Session.ID
	ttl      time.Duration        // 0 = keep forever
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store. A ttl of 0 disables expiry.
func NewMemoryStore(ttl time.Duration) Store {
	return &memory{sessions: make(map[string]*memEntry), ttl: ttl, now: time.Now}
}

// Save adds or updates the session and sweeps expired entries.
func (m *memory) Save(_ context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweep(now)
	m.sessions[s.ID] = &memEntry{s: *s, touched: now}
	return nil
}

// Get returns a copy of the stored session.
func (m *memory) Get(_ context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok || m.expired(e, m.now()) {
		return nil, ErrNotFound
	}
	s := e.s
	return &s, nil
}

func (m *memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) expired(e *memEntry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.touched) > m.ttl
}

// sweep drops expired entries. Caller holds mu.
func (m *memory) sweep(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for id, e := range m.sessions {
		if m.expired(e, now) {
			delete(m.sessions, id)
		}
	}
}
