package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"authsync-service/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(id string) identity.AuthorizedIdentity {
	return identity.AuthorizedIdentity{
		IdentityID:   id,
		DisplayName:  "user-" + id,
		OriginIP:     "203.0.113.7",
		AvatarRef:    "https://cdn.example/avatars/" + id + "/a.png",
		AccessToken:  "access-" + id,
		RefreshToken: "refresh-" + id,
	}
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identities.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)

	all, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFileStore_AppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identities.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, testRecord("U1")))
	require.NoError(t, s.Append(ctx, testRecord("U2")))

	exists, err := s.Exists(ctx, "U1")
	require.NoError(t, err)
	assert.True(t, exists)

	// A fresh store over the same file sees both records.
	reloaded, err := NewFileStore(path)
	require.NoError(t, err)

	all, err := reloaded.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "U1", all[0].IdentityID)
	assert.Equal(t, "access-U1", all[0].AccessToken)
}

func TestFileStore_DuplicateIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identities.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, testRecord("U1")))

	second := testRecord("U1")
	second.AccessToken = "other-token"
	err = s.Append(ctx, second)
	require.ErrorIs(t, err, ErrDuplicateIdentity)

	// The first record's tokens survive untouched.
	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "access-U1", all[0].AccessToken)
}

func TestFileStore_FileStaysValidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identities.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, testRecord("U1")))
	require.NoError(t, s.Append(ctx, testRecord("U2")))
	require.NoError(t, s.Append(ctx, testRecord("U3")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []identity.AuthorizedIdentity
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 3)
}

func TestFileStore_FailedFlushKeepsPreWriteState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "identities.json")
	require.NoError(t, os.Mkdir(filepath.Dir(path), 0o755))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, testRecord("U1")))

	// Removing the directory makes the temp-file creation fail.
	require.NoError(t, os.RemoveAll(filepath.Dir(path)))

	err = s.Append(ctx, testRecord("U2"))
	require.ErrorIs(t, err, ErrStorageUnavailable)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "U1", all[0].IdentityID)

	exists, err := s.Exists(ctx, "U2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileStore_ConcurrentAppendSameIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identities.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	const attempts = 16

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Append(ctx, testRecord("U1"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case err == ErrDuplicateIdentity:
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, duplicates)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identities.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path)
	require.ErrorIs(t, err, ErrStorageUnavailable)
}
