package whitelist

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the in-process whitelist engine, used in tests and when
// no redis address is configured.
type MemoryStore struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]struct{})}
}

func (s *MemoryStore) Add(ctx context.Context, operatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[operatorID]; ok {
		return ErrAlreadyListed
	}
	s.ids[operatorID] = struct{}{}
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, operatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[operatorID]; !ok {
		return ErrNotListed
	}
	delete(s.ids, operatorID)
	return nil
}

func (s *MemoryStore) Contains(ctx context.Context, operatorID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.ids[operatorID]
	return ok, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
