package whitelist

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyListed is returned by Add for an operator already present.
	ErrAlreadyListed = errors.New("operator already whitelisted")

	// ErrNotListed is returned by Remove for an operator not present.
	ErrNotListed = errors.New("operator not whitelisted")
)

// Store is the access-control list of operator IDs allowed to issue
// commands. It is unrelated to the authorized-identity collection:
// removing an operator never touches stored identities.
type Store interface {
	Add(ctx context.Context, operatorID string) error
	Remove(ctx context.Context, operatorID string) error
	Contains(ctx context.Context, operatorID string) (bool, error)
	List(ctx context.Context) ([]string, error)
}
