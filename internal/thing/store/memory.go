// Package store implements models.Repository over memory, PostgreSQL and Redis.
package store

import (
	"context"
	"sync"

	"scaffold/internal/thing/models"
	"scaffold/pkg/platform/sentinel"
)

// InMemoryStore keeps snapshots so stored aggregates never share state with callers.
type InMemoryStore struct {
	mu     sync.RWMutex
	things map[models.ThingID]models.Snapshot
}

var _ models.Repository = (*InMemoryStore)(nil)

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{things: make(map[models.ThingID]models.Snapshot)}
}

func (s *InMemoryStore) Save(_ context.Context, thing *models.Thing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.things[thing.ID()] = thing.Snapshot()
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id models.ThingID) (*models.Thing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.things[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return models.Reconstitute(snap), nil
}

// Len reports how many things are stored.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.things)
}
