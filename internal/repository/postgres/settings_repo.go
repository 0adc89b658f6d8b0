package postgres

import (
	"context"
	"errors"

	"github.com/fruitbid/server/internal/errs"
	"github.com/jackc/pgx/v5"
)

// SettingsRepo implements SettingsRepository using PostgreSQL.
type SettingsRepo struct{ db *DB }

// NewSettingsRepo constructs a settings repository.
func NewSettingsRepo(db *DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get returns the value stored under key.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM settings WHERE key=$1`
	var v string
	if err := r.db.Pool.QueryRow(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errs.ErrNotFound
		}
		return "", err
	}
	return v, nil
}

// Set upserts the value under key.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	_, err := r.db.Pool.Exec(ctx, q, key, value)
	return err
}

// Delete removes the key if present.
func (r *SettingsRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM settings WHERE key=$1`, key)
	return err
}

// DeleteByPrefix removes all keys starting with prefix.
func (r *SettingsRepo) DeleteByPrefix(ctx context.Context, prefix string) error {
	const q = `DELETE FROM settings WHERE key LIKE $1 || '%'`
	_, err := r.db.Pool.Exec(ctx, q, prefix)
	return err
}

// ClaimMarker sets key to value unless it already holds that value. The
// conditional upsert touches a row only when the value changes, so of any
// number of concurrent callers passing the same value exactly one sees
// rows-affected 1 and wins the claim.
func (r *SettingsRepo) ClaimMarker(ctx context.Context, key, value string) (bool, error) {
	const q = `
INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
WHERE settings.value IS DISTINCT FROM EXCLUDED.value`
	tag, err := r.db.Pool.Exec(ctx, q, key, value)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
