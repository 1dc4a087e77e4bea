package store

import (
	"context"
	"errors"

	"authsync-service/internal/identity"
)

var (
	// ErrDuplicateIdentity is returned by Append when a record with the
	// same identity ID is already present. Callers treat it as the dedupe
	// signal, not as a failure.
	ErrDuplicateIdentity = errors.New("identity already authorized")

	// ErrStorageUnavailable wraps read/write failures of the underlying
	// engine. A missing backing file is NOT this error; it reads as empty.
	ErrStorageUnavailable = errors.New("credential storage unavailable")
)

// Store is the durable collection of authorized identities. Identity IDs
// are unique across the collection; engines must serialize Append so two
// concurrent inserts of the same new ID cannot both succeed.
type Store interface {
	// Append inserts a new record and flushes it to durable storage.
	// Returns ErrDuplicateIdentity when the identity ID is already present.
	Append(ctx context.Context, rec identity.AuthorizedIdentity) error

	// Exists reports whether a record with the given identity ID is stored.
	Exists(ctx context.Context, identityID string) (bool, error)

	// All returns a snapshot of every stored record, reflecting all
	// previously completed Append calls.
	All(ctx context.Context) ([]identity.AuthorizedIdentity, error)
}
