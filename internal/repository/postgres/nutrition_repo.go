package postgres

import (
	"context"

	"github.com/fruitbid/server/internal/model"
)

// NutritionRepo implements NutritionRepository using PostgreSQL.
type NutritionRepo struct{ db *DB }

// NewNutritionRepo constructs a nutrition repository.
func NewNutritionRepo(db *DB) *NutritionRepo { return &NutritionRepo{db: db} }

// List returns all nutrition rows ordered by item name.
func (r *NutritionRepo) List(ctx context.Context) ([]model.Nutrition, error) {
	const q = `
SELECT item_name, calories, fiber, vit_c, potassium, notes
FROM nutrition ORDER BY item_name`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Nutrition
	for rows.Next() {
		var n model.Nutrition
		if err := rows.Scan(&n.ItemName, &n.Calories, &n.Fiber, &n.VitC, &n.Potassium, &n.Notes); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Upsert inserts or replaces the row for an item.
func (r *NutritionRepo) Upsert(ctx context.Context, n *model.Nutrition) error {
	const q = `
INSERT INTO nutrition (item_name, calories, fiber, vit_c, potassium, notes)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (item_name) DO UPDATE
SET calories=EXCLUDED.calories, fiber=EXCLUDED.fiber, vit_c=EXCLUDED.vit_c,
    potassium=EXCLUDED.potassium, notes=EXCLUDED.notes`
	_, err := r.db.Pool.Exec(ctx, q, n.ItemName, n.Calories, n.Fiber, n.VitC, n.Potassium, n.Notes)
	return err
}

// Count returns the number of nutrition rows.
func (r *NutritionRepo) Count(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM nutrition`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
