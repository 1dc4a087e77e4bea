package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"authsync-service/internal/identity"

	"github.com/lib/pq"
)

const migration = `
CREATE TABLE IF NOT EXISTS authorized_identities (
    identity_id text PRIMARY KEY,
    display_name text NOT NULL,
    origin_ip text NOT NULL,
    avatar_ref text NOT NULL DEFAULT '',
    access_token text NOT NULL,
    refresh_token text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW()
);
`

// PostgresStore is the SQL engine behind the Store contract. Uniqueness is
// enforced by the primary key, so concurrent Appends race safely in the
// database rather than in this process.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, migration); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", ErrStorageUnavailable, err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Append(ctx context.Context, rec identity.AuthorizedIdentity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authorized_identities
			(identity_id, display_name, origin_ip, avatar_ref, access_token, refresh_token)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		rec.IdentityID,
		rec.DisplayName,
		rec.OriginIP,
		rec.AvatarRef,
		rec.AccessToken,
		rec.RefreshToken,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, identityID string) (bool, error) {
	var found bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM authorized_identities WHERE identity_id = $1
		)
	`, identityID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return found, nil
}

func (s *PostgresStore) All(ctx context.Context) ([]identity.AuthorizedIdentity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identity_id, display_name, origin_ip, avatar_ref, access_token, refresh_token
		FROM authorized_identities
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []identity.AuthorizedIdentity
	for rows.Next() {
		var rec identity.AuthorizedIdentity
		if err := rows.Scan(
			&rec.IdentityID,
			&rec.DisplayName,
			&rec.OriginIP,
			&rec.AvatarRef,
			&rec.AccessToken,
			&rec.RefreshToken,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return out, nil
}
