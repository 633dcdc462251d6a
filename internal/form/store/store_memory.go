// Package store persists form sessions between requests.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"onboarding/internal/form/models"
	"onboarding/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in process memory. Expired sessions are
// reported as sentinel.ErrExpired and dropped on access.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
	now      func() time.Time
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithClock replaces the expiry clock.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewInMemory(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		sessions: make(map[uuid.UUID]*models.Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Create(_ context.Context, sess *models.Session) error {
	clone, err := sess.Clone()
	if err != nil {
		return fmt.Errorf("copy session: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sess.ID]; exists {
		return fmt.Errorf("session %s: %w", sess.ID, sentinel.ErrConflict)
	}
	s.sessions[sess.ID] = clone
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if sess.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, sentinel.ErrExpired
	}
	return sess.Clone()
}

// Update runs fn on a copy and swaps it in when fn succeeds. Updates are
// serialized by the store lock.
func (s *InMemoryStore) Update(_ context.Context, id uuid.UUID, fn func(*models.Session) error) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if current.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, sentinel.ErrExpired
	}
	working, err := current.Clone()
	if err != nil {
		return nil, fmt.Errorf("copy session: %w", err)
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	stored, err := working.Clone()
	if err != nil {
		return nil, fmt.Errorf("copy session: %w", err)
	}
	s.sessions[id] = stored
	return working, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
