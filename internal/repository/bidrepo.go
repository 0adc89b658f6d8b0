package repository

import (
	"context"

	"github.com/fruitbid/server/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// BidRepository is the append-only bid ledger.
type BidRepository interface {
	// Place validates and appends a bid atomically. The item row is locked
	// for the duration of the check so two racing bids on the same item
	// cannot both pass validation. Returns the bid rejection sentinels in
	// their contract order, or errs.ErrNotFound for an unknown item.
	Place(ctx context.Context, b *model.Bid) error

	// HighestBid returns max(amount) over the item's bids, or zero if none.
	HighestBid(ctx context.Context, itemName string) (decimal.Decimal, error)

	// UserStanding returns the user's maximum bid on the item, or nil if
	// the user has not bid on it.
	UserStanding(ctx context.Context, itemName string, userID uuid.UUID) (*decimal.Decimal, error)

	// ListByItem returns the item's full bid list, oldest first.
	ListByItem(ctx context.Context, itemName string) ([]model.Bid, error)

	// ListByUser returns the user's bids, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Bid, error)

	// DeleteAll clears the ledger on cycle reset.
	DeleteAll(ctx context.Context) error
}
