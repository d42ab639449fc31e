package trail

import (
	"context"
	"sync"
)

// MemoryStore keeps trails in process memory. It suits tests and previews.
type MemoryStore struct {
	mu    sync.RWMutex
	lists map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string][]string)}
}

func (s *MemoryStore) Push(_ context.Context, key, line string, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := append(s.lists[key], line)
	if limit > 0 && len(l) > limit {
		l = append([]string(nil), l[len(l)-limit:]...)
	}
	s.lists[key] = l
	return nil
}

func (s *MemoryStore) List(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := s.lists[key]
	out := make([]string, len(l))
	copy(out, l)
	return out, nil
}
