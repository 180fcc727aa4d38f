package settings

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is an in-memory Store. Used in development when no
// database is configured, and in tests. Updates are serialized by the
// mutex so readers always see a complete record.
type MemoryStore struct {
	mu sync.RWMutex
	ov Overrides
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store: every field resolves
// to its package default until updated.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith creates an in-memory store seeded with a record.
func NewMemoryStoreWith(ov Overrides) *MemoryStore {
	return &MemoryStore{ov: cloneOverrides(ov)}
}

// Get returns a copy of the current record.
func (s *MemoryStore) Get(ctx context.Context) (Overrides, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOverrides(s.ov), nil
}

// Update replaces the record.
func (s *MemoryStore) Update(ctx context.Context, ov Overrides) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ov = cloneOverrides(ov)
	return nil
}

// cloneOverrides copies the record so callers cannot mutate stored state
// through the shared weight table slice.
func cloneOverrides(ov Overrides) Overrides {
	out := ov
	out.WeightTable = slices.Clone(ov.WeightTable)
	return out
}
