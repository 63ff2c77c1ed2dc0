// internal/store/memory.go
//
// In-memory implementation of the session Store.
// Sessions live only as long as the process; in-progress puzzles are never
// written to disk.
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID in a map.
//   - Get/Save are guarded by an RWMutex.
//   - Update runs a mutation under the write lock, so concurrent requests for
//     the same session are serialised (a game.Session is not goroutine-safe).

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/wordsearch/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("not found")

// Store defines the registry interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session is unknown.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Update runs fn on the session with exclusive access.
	// Returns ErrNotFound if the session is unknown, otherwise fn's error.
	Update(ctx context.Context, id string, fn func(s *game.Session) error) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex             // guards sessions
	sessions map[string]*game.Session // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Session)}
}

// Save adds or updates the session in the map.
func (m *memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// Update applies fn while holding the write lock.
func (m *memory) Update(ctx context.Context, id string, fn func(s *game.Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	return fn(s)
}
