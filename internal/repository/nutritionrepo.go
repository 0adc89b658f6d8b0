package repository

import (
	"context"

	"github.com/fruitbid/server/internal/model"
)

// NutritionRepository stores per-item nutrition metadata.
type NutritionRepository interface {
	// List returns all nutrition rows ordered by item name.
	List(ctx context.Context) ([]model.Nutrition, error)
	// Upsert inserts or replaces the row for an item.
	Upsert(ctx context.Context, n *model.Nutrition) error
	// Count returns the number of rows (used for seeding).
	Count(ctx context.Context) (int, error)
}
