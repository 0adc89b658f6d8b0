package postgres

import (
	"context"
	"errors"

	"github.com/fruitbid/server/internal/errs"
	"github.com/fruitbid/server/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CatalogRepo implements CatalogRepository using PostgreSQL.
type CatalogRepo struct{ db *DB }

// NewCatalogRepo constructs a catalog repository.
func NewCatalogRepo(db *DB) *CatalogRepo { return &CatalogRepo{db: db} }

// List returns all items ordered by name. A null billing rate falls back to
// model.DefaultBillingRate.
func (r *CatalogRepo) List(ctx context.Context) ([]model.Item, error) {
	const q = `
SELECT name, min_bid, market_cap, billing_rate
FROM items ORDER BY name`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// Get loads a single item by name.
func (r *CatalogRepo) Get(ctx context.Context, name string) (*model.Item, error) {
	const q = `
SELECT name, min_bid, market_cap, billing_rate
FROM items WHERE name=$1`
	it, err := scanItem(r.db.Pool.QueryRow(ctx, q, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

func scanItem(row pgx.Row) (*model.Item, error) {
	var it model.Item
	var rate decimal.NullDecimal
	if err := row.Scan(&it.Name, &it.MinBid, &it.MarketCap, &rate); err != nil {
		return nil, err
	}
	if rate.Valid {
		it.BillingRate = rate.Decimal
	} else {
		it.BillingRate = model.DefaultBillingRate
	}
	return &it, nil
}

// Add inserts a new item row.
func (r *CatalogRepo) Add(ctx context.Context, it *model.Item) error {
	const q = `
INSERT INTO items (name, min_bid, market_cap, billing_rate)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, it.Name, it.MinBid, it.MarketCap, it.BillingRate)
	if isUniqueViolation(err) {
		return errs.ErrDuplicateItem
	}
	return err
}

// UpdateMinBid overwrites the minimum bid for an item.
func (r *CatalogRepo) UpdateMinBid(ctx context.Context, name string, minBid decimal.Decimal) error {
	const q = `UPDATE items SET min_bid=$2 WHERE name=$1`
	tag, err := r.db.Pool.Exec(ctx, q, name, minBid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Count returns the number of catalog items.
func (r *CatalogRepo) Count(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM items`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
