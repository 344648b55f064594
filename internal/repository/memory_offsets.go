package repository

import (
	"context"
	"sync"
)

// MemoryOffsetStore keeps the update offset in memory. Used when Redis
// is disabled; offsets then reset with the process, matching the
// stateless-across-restarts baseline.
type MemoryOffsetStore struct {
	mu     sync.Mutex
	offset int64
}

func NewMemoryOffsetStore() *MemoryOffsetStore {
	return &MemoryOffsetStore{}
}

func (s *MemoryOffsetStore) Load(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset, nil
}

func (s *MemoryOffsetStore) Store(_ context.Context, offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset > s.offset {
		s.offset = offset
	}
	return nil
}

func (s *MemoryOffsetStore) Close() error { return nil }
