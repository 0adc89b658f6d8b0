package postgres

import (
	"context"

	"github.com/fruitbid/server/internal/model"
)

// LuckyDipRepo implements LuckyDipRepository using PostgreSQL.
type LuckyDipRepo struct{ db *DB }

// NewLuckyDipRepo constructs a lucky dip repository.
func NewLuckyDipRepo(db *DB) *LuckyDipRepo { return &LuckyDipRepo{db: db} }

// Insert records a winner. The item name is the primary key and conflicts
// are ignored, so re-running a draw never overwrites an existing winner.
func (r *LuckyDipRepo) Insert(ctx context.Context, ld *model.LuckyDip) error {
	const q = `
INSERT INTO lucky_dip (item_name, user_id, amount)
VALUES ($1, $2, $3)
ON CONFLICT (item_name) DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, q, ld.ItemName, ld.UserID, ld.Amount)
	return err
}

// Winners returns all winners joined with their contact identifiers.
func (r *LuckyDipRepo) Winners(ctx context.Context) ([]model.LuckyWinner, error) {
	const q = `
SELECT ld.item_name, u.identifier, ld.amount
FROM lucky_dip ld JOIN users u ON ld.user_id = u.id
ORDER BY ld.item_name`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LuckyWinner
	for rows.Next() {
		var w model.LuckyWinner
		if err := rows.Scan(&w.ItemName, &w.Identifier, &w.Amount); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// DeleteAll clears winners on cycle reset.
func (r *LuckyDipRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM lucky_dip`)
	return err
}
