package sqlite

import (
	"context"
	"time"

	"github.com/tasmanlabs/orgauth/internal/auth/domain"
)

type refreshRegistryRepo struct {
	db dbtx
}

func (r *refreshRegistryRepo) Put(ctx context.Context, entry domain.RegistryEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_registry (token_hash, user_id, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (token_hash) DO UPDATE SET
			user_id = excluded.user_id,
			expires_at = excluded.expires_at`,
		entry.TokenHash, entry.UserID, entry.ExpiresAt.UTC(),
	)
	return err
}

func (r *refreshRegistryRepo) Get(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id FROM refresh_registry
		WHERE token_hash = ? AND expires_at > ?`,
		tokenHash, time.Now().UTC(),
	).Scan(&userID)
	if err != nil {
		return "", mapNotFound(err)
	}
	return userID, nil
}

func (r *refreshRegistryRepo) Delete(ctx context.Context, tokenHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM refresh_registry
		WHERE token_hash = ? AND expires_at > ?`,
		tokenHash, time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *refreshRegistryRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM refresh_registry WHERE expires_at <= ?`, now.UTC())
	return err
}
