// Package memory is the in-memory document store, used by tests and as the
// default zero-setup backend.
package memory

import (
	"context"
	"sync"

	"gagyebu/internal/core"
	"gagyebu/internal/store"
)

type Store struct {
	mu   sync.Mutex
	docs map[string]core.Snapshot
}

func New() *Store {
	return &Store{docs: map[string]core.Snapshot{}}
}

// Load implements store.DocumentStore.
func (s *Store) Load(_ context.Context, key string) (core.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.docs[key]
	if !ok {
		return store.Default(), false, nil
	}
	return snap.Clone(), true, nil
}

// Save implements store.DocumentStore.
func (s *Store) Save(_ context.Context, key string, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = snap.Clone()
	return nil
}
