package group

import "context"

// Client talks to the external group-management API. The sync run is its
// only caller; both operations are expected to block on network I/O.
type Client interface {
	// IsMember reports whether the identity is already a member of the
	// target group.
	IsMember(ctx context.Context, groupID, identityID string) (bool, error)

	// AddMember joins the identity to the group, authorized by the access
	// token captured at ingestion time.
	AddMember(ctx context.Context, groupID, identityID, accessToken string) error
}
