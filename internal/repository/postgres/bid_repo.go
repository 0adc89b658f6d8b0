package postgres

import (
	"context"
	"errors"

	"github.com/fruitbid/server/internal/errs"
	"github.com/fruitbid/server/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BidRepo implements BidRepository using PostgreSQL.
type BidRepo struct{ db *DB }

// NewBidRepo constructs a bid ledger repository.
func NewBidRepo(db *DB) *BidRepo { return &BidRepo{db: db} }

// Place validates and appends a bid in one transaction. The item row is
// locked first, which serializes concurrent bids on the same item: the
// standing/highest reads below cannot go stale before the insert commits.
// Rejections follow the contract order (own standing, cap, highest, minimum).
func (r *BidRepo) Place(ctx context.Context, b *model.Bid) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const selItem = `SELECT min_bid, market_cap FROM items WHERE name=$1 FOR UPDATE`
	var minBid, marketCap decimal.Decimal
	if err = tx.QueryRow(ctx, selItem, b.ItemName).Scan(&minBid, &marketCap); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}

	const selStanding = `SELECT MAX(amount) FROM bids WHERE item_name=$1 AND user_id=$2`
	var standing decimal.NullDecimal
	if err = tx.QueryRow(ctx, selStanding, b.ItemName, b.UserID).Scan(&standing); err != nil {
		return err
	}

	const selHighest = `SELECT COALESCE(MAX(amount), 0) FROM bids WHERE item_name=$1`
	var highest decimal.Decimal
	if err = tx.QueryRow(ctx, selHighest, b.ItemName).Scan(&highest); err != nil {
		return err
	}

	var standingPtr *decimal.Decimal
	if standing.Valid {
		standingPtr = &standing.Decimal
	}
	if err = model.EvaluateBid(b.Amount, standingPtr, marketCap, highest, minBid); err != nil {
		return err
	}

	const ins = `
INSERT INTO bids (id, item_name, user_id, amount, placed_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err = tx.Exec(ctx, ins, b.ID, b.ItemName, b.UserID, b.Amount, b.PlacedAt)
	return err
}

// HighestBid returns max(amount) for the item, or zero if it has no bids.
func (r *BidRepo) HighestBid(ctx context.Context, itemName string) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(MAX(amount), 0) FROM bids WHERE item_name=$1`
	var v decimal.Decimal
	if err := r.db.Pool.QueryRow(ctx, q, itemName).Scan(&v); err != nil {
		return decimal.Zero, err
	}
	return v, nil
}

// UserStanding returns the user's maximum bid on the item, nil when absent.
func (r *BidRepo) UserStanding(ctx context.Context, itemName string, userID uuid.UUID) (*decimal.Decimal, error) {
	const q = `SELECT MAX(amount) FROM bids WHERE item_name=$1 AND user_id=$2`
	var v decimal.NullDecimal
	if err := r.db.Pool.QueryRow(ctx, q, itemName, userID).Scan(&v); err != nil {
		return nil, err
	}
	if !v.Valid {
		return nil, nil
	}
	return &v.Decimal, nil
}

// ListByItem returns the item's full bid list, oldest first.
func (r *BidRepo) ListByItem(ctx context.Context, itemName string) ([]model.Bid, error) {
	const q = `
SELECT id, item_name, user_id, amount, placed_at
FROM bids WHERE item_name=$1 ORDER BY placed_at`
	return r.list(ctx, q, itemName)
}

// ListByUser returns the user's bids, newest first.
func (r *BidRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Bid, error) {
	const q = `
SELECT id, item_name, user_id, amount, placed_at
FROM bids WHERE user_id=$1 ORDER BY placed_at DESC`
	return r.list(ctx, q, userID)
}

func (r *BidRepo) list(ctx context.Context, q string, arg any) ([]model.Bid, error) {
	rows, err := r.db.Pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.ItemName, &b.UserID, &b.Amount, &b.PlacedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteAll clears the ledger on cycle reset.
func (r *BidRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM bids`)
	return err
}
