package repository

import (
	"context"

	"github.com/fruitbid/server/internal/model"
	"github.com/shopspring/decimal"
)

// CatalogRepository provides access to the item catalog. Items are never deleted.
type CatalogRepository interface {
	// List returns all items ordered by name.
	List(ctx context.Context) ([]model.Item, error)
	// Get loads a single item by name.
	Get(ctx context.Context, name string) (*model.Item, error)
	// Add inserts a new item; duplicate names map to errs.ErrDuplicateItem.
	Add(ctx context.Context, it *model.Item) error
	// UpdateMinBid overwrites the minimum bid for an item.
	UpdateMinBid(ctx context.Context, name string, minBid decimal.Decimal) error
	// Count returns the number of catalog items (used for seeding).
	Count(ctx context.Context) (int, error)
}
