package repository

import (
	"context"

	"github.com/fruitbid/server/internal/model"
)

// OTPRepository stores issued challenges. Older challenges per identifier
// are superseded, not invalidated: only the newest one is ever consulted.
type OTPRepository interface {
	// Insert stores a freshly issued challenge.
	Insert(ctx context.Context, ch *model.OTPChallenge) error
	// Latest returns the most recently issued challenge for the identifier,
	// or errs.ErrNotFound when none exists.
	Latest(ctx context.Context, identifier string) (*model.OTPChallenge, error)
}
