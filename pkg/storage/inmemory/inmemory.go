// Package inmemory provides a map-backed session store. It is the default
// store when no database path is configured, and the store of choice in
// tests.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/cognicodeco/chainstream/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu guards sessions
	mu sync.RWMutex

	// sessions maps session ID to record
	sessions map[string]*storage.Session
}

// NewDriver creates a new in-memory session store.
func NewDriver() *Driver {
	return &Driver{
		sessions: make(map[string]*storage.Session),
	}
}

// Put stores a session, overwriting any existing record with the same ID.
func (s *Driver) Put(_ context.Context, session *storage.Session) error {
	if session == nil {
		return errors.New("cannot store nil session")
	}
	if session.ID == "" {
		return errors.New("cannot store session without an ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so later caller mutation can't reach into the store.
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

// Get retrieves a session by ID.
func (s *Driver) Get(_ context.Context, id string) (*storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	out := *session
	return &out, nil
}

// List returns all sessions, most recently started first.
func (s *Driver) List(_ context.Context) ([]*storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*storage.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out := *session
		sessions = append(sessions, &out)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})

	return sessions, nil
}

// Count returns the number of stored sessions.
func (s *Driver) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close is a no-op for the in-memory store.
func (s *Driver) Close() error {
	return nil
}
