package repository

import (
	"context"

	"github.com/fruitbid/server/internal/model"
)

// LuckyDipRepository stores at most one random winner per item per cycle.
type LuckyDipRepository interface {
	// Insert records a winner; a second insert for the same item is a no-op.
	Insert(ctx context.Context, ld *model.LuckyDip) error
	// Winners returns all winners joined with their contact identifiers.
	Winners(ctx context.Context) ([]model.LuckyWinner, error)
	// DeleteAll clears winners on cycle reset.
	DeleteAll(ctx context.Context) error
}
