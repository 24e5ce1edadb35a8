// Package memory provides in-process adapters: a ContextStore for
// single-instance deployments and tests, and a ClientRepository over a fixed
// record list.
package memory

import (
	"context"
	"sync"

	"github.com/plumedoc/plume/pkg/domain"
)

// Store implements ports.ContextStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.ConversationContext
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.ConversationContext),
	}
}

// Save persists the context in memory. The stored value is a deep copy, so
// later mutations by the caller do not leak into the store.
func (s *Store) Save(ctx context.Context, sessionID string, conv *domain.ConversationContext) error {
	clone := conv.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = clone
	return nil
}

// Load retrieves a copy of the context; the caller can mutate it freely.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.ConversationContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return conv.Clone(), nil
}

// Delete removes the context.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}
