// Package postgres implements the repository interfaces over a pgx
// connection pool.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of *pgxpool.Pool the repositories touch. Keeping it
// narrow lets tests swap in pgxmock without a running database.
type PgxPool interface {
	// Exec runs a statement and returns its command tag.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	// Query runs a SELECT and returns the rows iterator.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	// QueryRow runs a query expected to yield at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	// BeginTx opens a transaction; the bid ledger uses it for its
	// lock-validate-insert sequence.
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	// Close releases all pooled connections.
	Close()
}

// DB carries the pool handed to every repository constructor.
type DB struct{ Pool PgxPool }

// New connects a pool for the given DSN.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{Pool: pool}, nil
}

// Close shuts down the pool.
func (db *DB) Close() { db.Pool.Close() }

// isUniqueViolation reports whether err is Postgres error 23505
// (unique_violation), raised for duplicate identifiers and item names.
func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}
