// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/fruitbid/server/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to verified bidder accounts.
type UserRepository interface {
	// Create inserts a new verified user.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByIdentifier loads a user by contact identifier.
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	// List returns all registered users ordered by creation time.
	List(ctx context.Context) ([]model.User, error)
}
