package store

import (
	"context"
	"sync"
)

// MemoryStore keeps entries for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, prepare(e))
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.entries, limit), nil
}

func (s *MemoryStore) Close() error { return nil }

func newestFirst(entries []Entry, limit int) []Entry {
	n := len(entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}
	return out
}
