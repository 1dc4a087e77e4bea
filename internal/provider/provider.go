package provider

import (
	"context"
	"errors"

	"authsync-service/internal/identity"
)

var (
	// ErrExchangeFailed covers any non-success outcome of the code
	// exchange. The code is single-use: callers must not retry it.
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrResolutionFailed covers profile lookup failures. By the time it
	// occurs the one-time code is already consumed; there is no rollback
	// against the remote provider.
	ErrResolutionFailed = errors.New("identity resolution failed")
)

// TokenExchanger converts a single-use authorization code into durable
// credentials and resolves them into identity facts. Implementations
// perform no retries; both failures propagate to the caller.
type TokenExchanger interface {
	// Exchange trades the authorization code for an access grant.
	Exchange(ctx context.Context, code string) (*identity.AccessGrant, error)

	// ResolveIdentity fetches the profile attributes the grant's access
	// token is authorized to read.
	ResolveIdentity(ctx context.Context, grant *identity.AccessGrant) (*identity.Profile, error)
}
