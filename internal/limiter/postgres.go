package limiter

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is a PostgreSQL-backed limiter with a fixed window per identifier.
type PG struct {
	pool        pgxQuerier
	window      time.Duration
	maxRequests int
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(pool *pgxpool.Pool, window time.Duration, maxRequests int) *PG {
	return &PG{pool: pool, window: window, maxRequests: maxRequests}
}

// NewPGWithQuerier constructs a PostgreSQL-backed limiter over any querier.
func NewPGWithQuerier(q pgxQuerier, window time.Duration, maxRequests int) *PG {
	return &PG{pool: q, window: window, maxRequests: maxRequests}
}

// Reserve counts the request inside the current window. The counter resets
// once the window has fully elapsed; until then requests beyond the cap are
// denied with the time left in the window.
func (l *PG) Reserve(ctx context.Context, identifier string) (bool, time.Duration, error) {
	const q = `
INSERT INTO otp_limiter (identifier, request_count, window_start)
VALUES ($1, 1, now())
ON CONFLICT (identifier) DO UPDATE
SET
  request_count = CASE WHEN now() - otp_limiter.window_start > $2::interval THEN 1 ELSE otp_limiter.request_count + 1 END,
  window_start  = CASE WHEN now() - otp_limiter.window_start > $2::interval THEN now() ELSE otp_limiter.window_start END
RETURNING request_count, window_start`
	var count int
	var windowStart time.Time
	if err := l.pool.QueryRow(ctx, q, identifier, l.window).Scan(&count, &windowStart); err != nil {
		return false, 0, err
	}
	if count > l.maxRequests {
		retry := l.window - time.Since(windowStart)
		if retry < 0 {
			retry = 0
		}
		return false, retry, nil
	}
	return true, 0, nil
}
