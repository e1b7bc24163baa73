// Package memstore provides an in-memory [storage.Store] for tests and
// ephemeral runs. Nothing survives process exit.
package memstore

import (
	"context"
	"sync"

	"github.com/voxkey/voxkey/pkg/storage"
)

// Compile-time interface check.
var _ storage.Store = (*Store)(nil)

// Store is a map-backed key-value store. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates an empty Store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Get implements [storage.Store].
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements [storage.Store].
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete implements [storage.Store].
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Close implements [storage.Store].
func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored keys. Intended for tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
