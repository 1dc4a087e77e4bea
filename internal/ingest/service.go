package ingest

import (
	"context"
	"errors"
	"strings"

	"authsync-service/internal/identity"
	"authsync-service/internal/identity/store"
	"authsync-service/internal/logger"
	"authsync-service/internal/notify"
	"authsync-service/internal/provider"

	"github.com/google/uuid"
)

// ErrInvalidInput rejects a malformed authorization code before any
// external call is made.
var ErrInvalidInput = errors.New("invalid authorization code")

// Outcome is the terminal state of one successful ingestion.
type Outcome string

const (
	NewlyAuthorized   Outcome = "newly_authorized"
	AlreadyAuthorized Outcome = "already_authorized"
)

// Service orchestrates one inbound authorization callback: validate the
// code, exchange it, resolve the identity, dedupe against the store,
// persist, then notify. Persistence happens before notification; a
// notification that fails to deliver never fails the ingestion.
type Service struct {
	exchanger provider.TokenExchanger
	store     store.Store
	notifier  notify.Notifier
}

func NewService(
	exchanger provider.TokenExchanger,
	credStore store.Store,
	notifier notify.Notifier,
) *Service {
	return &Service{
		exchanger: exchanger,
		store:     credStore,
		notifier:  notifier,
	}
}

func (s *Service) Ingest(ctx context.Context, code, originIP string) (Outcome, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.ContainsAny(code, " \t\r\n") {
		return "", ErrInvalidInput
	}

	grant, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	// The one-time code is consumed at this point. A resolution failure
	// cannot be rolled back against the provider; it is surfaced, not
	// swallowed.
	profile, err := s.exchanger.ResolveIdentity(ctx, grant)
	if err != nil {
		return "", err
	}

	exists, err := s.store.Exists(ctx, profile.IdentityID)
	if err != nil {
		return "", err
	}
	if exists {
		logger.Info("identity already authorized", map[string]any{
			"identity_id": profile.IdentityID,
			"origin_ip":   originIP,
		})
		return AlreadyAuthorized, nil
	}

	rec := identity.AuthorizedIdentity{
		IdentityID:   profile.IdentityID,
		DisplayName:  profile.DisplayName,
		OriginIP:     originIP,
		AvatarRef:    profile.AvatarRef,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
	}

	if err := s.store.Append(ctx, rec); err != nil {
		// A concurrent ingestion for the same identity won the race.
		if errors.Is(err, store.ErrDuplicateIdentity) {
			return AlreadyAuthorized, nil
		}
		return "", err
	}

	logger.Info("identity authorized", map[string]any{
		"identity_id":  profile.IdentityID,
		"display_name": profile.DisplayName,
		"origin_ip":    originIP,
	})

	ev := notify.Event{
		EventID:      uuid.NewString(),
		Kind:         notify.KindIdentityAuthorized,
		IdentityID:   rec.IdentityID,
		DisplayName:  rec.DisplayName,
		OriginIP:     rec.OriginIP,
		AvatarRef:    rec.AvatarRef,
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		logger.Warn("notification delivery failed", map[string]any{
			"identity_id": rec.IdentityID,
			"error":       err.Error(),
		})
	}

	return NewlyAuthorized, nil
}
