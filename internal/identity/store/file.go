package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"authsync-service/internal/identity"
)

// FileStore persists the collection as a single pretty-printed JSON array.
// The whole array is rewritten on every Append via a temp-file rename, so
// a concurrent reader never observes a partially written collection.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	records []identity.AuthorizedIdentity
	index   map[string]struct{}
}

// NewFileStore loads the collection at path. A missing file is an empty
// collection, not an error.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		index: make(map[string]struct{}),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	var records []identity.AuthorizedIdentity
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrStorageUnavailable, s.path, err)
	}

	s.records = records
	for _, rec := range records {
		s.index[rec.IdentityID] = struct{}{}
	}
	return nil
}

// flush writes the full collection to a temp file in the same directory
// and renames it over the target. Callers must hold the write lock.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.records, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorageUnavailable, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *FileStore) Append(ctx context.Context, rec identity.AuthorizedIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[rec.IdentityID]; ok {
		return ErrDuplicateIdentity
	}

	s.records = append(s.records, rec)
	if err := s.flush(); err != nil {
		// Keep memory consistent with what is on disk.
		s.records = s.records[:len(s.records)-1]
		return err
	}
	s.index[rec.IdentityID] = struct{}{}
	return nil
}

func (s *FileStore) Exists(ctx context.Context, identityID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.index[identityID]
	return ok, nil
}

func (s *FileStore) All(ctx context.Context) ([]identity.AuthorizedIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]identity.AuthorizedIdentity, len(s.records))
	copy(out, s.records)
	return out, nil
}
