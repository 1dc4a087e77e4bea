package store

import (
	"context"
	"sync"

	"authsync-service/internal/identity"
)

// MemoryStore keeps records in process memory. Used in tests and as the
// reference implementation of the Store contract.
type MemoryStore struct {
	mu      sync.RWMutex
	records []identity.AuthorizedIdentity
	index   map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index: make(map[string]struct{}),
	}
}

func (s *MemoryStore) Append(ctx context.Context, rec identity.AuthorizedIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[rec.IdentityID]; ok {
		return ErrDuplicateIdentity
	}

	s.records = append(s.records, rec)
	s.index[rec.IdentityID] = struct{}{}
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, identityID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.index[identityID]
	return ok, nil
}

func (s *MemoryStore) All(ctx context.Context) ([]identity.AuthorizedIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]identity.AuthorizedIdentity, len(s.records))
	copy(out, s.records)
	return out, nil
}
