package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps diffs in a map. It backs tests and throwaway worlds.
type MemoryStore struct {
	mu    sync.RWMutex
	diffs map[int]ChunkDiff
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{diffs: make(map[int]ChunkDiff)}
}

func (s *MemoryStore) Load(_ context.Context, index int) (ChunkDiff, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.diffs[index]
	if !ok {
		return ChunkDiff{}, false, nil
	}
	return cloneDiff(d), true, nil
}

func (s *MemoryStore) Save(_ context.Context, d ChunkDiff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.Empty() {
		delete(s.diffs, d.Index)
		return nil
	}
	s.diffs[d.Index] = cloneDiff(d)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, index int) error {
	s.mu.Lock()
	delete(s.diffs, index)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored diffs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.diffs)
}

func (s *MemoryStore) Close() error { return nil }

func cloneDiff(d ChunkDiff) ChunkDiff {
	d.Tiles = slices.Clone(d.Tiles)
	d.Vegetation = slices.Clone(d.Vegetation)
	return d
}
