package postgres

import (
	"context"
	"errors"

	"github.com/fruitbid/server/internal/errs"
	"github.com/fruitbid/server/internal/model"
	"github.com/jackc/pgx/v5"
)

// OTPRepo implements OTPRepository using PostgreSQL.
type OTPRepo struct{ db *DB }

// NewOTPRepo constructs an OTP challenge repository.
func NewOTPRepo(db *DB) *OTPRepo { return &OTPRepo{db: db} }

// Insert stores a freshly issued challenge.
func (r *OTPRepo) Insert(ctx context.Context, ch *model.OTPChallenge) error {
	const q = `
INSERT INTO otps (identifier, code, address, expires_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, ch.Identifier, ch.Code, ch.Address, ch.ExpiresAt)
	return err
}

// Latest returns the newest challenge for the identifier. Older challenges
// stay in place but become unreachable through this query.
func (r *OTPRepo) Latest(ctx context.Context, identifier string) (*model.OTPChallenge, error) {
	const q = `
SELECT identifier, code, address, expires_at
FROM otps WHERE identifier=$1 ORDER BY id DESC LIMIT 1`
	var ch model.OTPChallenge
	err := r.db.Pool.QueryRow(ctx, q, identifier).Scan(&ch.Identifier, &ch.Code, &ch.Address, &ch.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &ch, nil
}
