package notify

import "context"

// Event is the structured message published once per newly authorized
// identity. It intentionally carries both tokens: the configured sink is
// the one place outside the store that receives credentials.
type Event struct {
	EventID      string `json:"event_id"`
	Kind         string `json:"kind"`
	IdentityID   string `json:"identity_id"`
	DisplayName  string `json:"display_name"`
	OriginIP     string `json:"origin_ip"`
	AvatarRef    string `json:"avatar_ref"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

const KindIdentityAuthorized = "identity.authorized"

// Notifier delivers events to an external sink with at-most-once
// semantics. Delivery failure is the caller's to log, never to retry.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// NopNotifier discards every event. Used when no sink is configured.
type NopNotifier struct{}

func (NopNotifier) Publish(ctx context.Context, ev Event) error { return nil }
