// Package memory implements the session store as a process-local map.
// It is the default store: sessions do not survive a restart and grow
// unbounded, which is acceptable at the modeled scale.
package memory

import (
	"context"
	"sync"

	"github.com/unitpass/passbot/pkg/domain"
)

// Store implements ports.SessionStore in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[int64]*domain.Session
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[int64]*domain.Session)}
}

// Save persists a copy of the session.
func (s *Store) Save(ctx context.Context, userID int64, sess *domain.Session) error {
	cp := *sess

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = &cp
	return nil
}

// Load retrieves a copy of the session so the caller cannot mutate the
// stored one through the pointer.
func (s *Store) Load(ctx context.Context, userID int64) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
	return nil
}
