// Package httpserver exposes the FruitBid HTTP JSON API.
package httpserver

import (
	"context"

	"github.com/gofrs/uuid/v5"
)

type ctxKey string

const (
	userIDKey ctxKey = "fb.userID"
	adminKey  ctxKey = "fb.admin"
)

// WithUserID stores the authenticated user ID in the request context.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx fetches the authenticated user ID from the request context.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// WithAdmin marks the request context as an administrator session.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey, true)
}

// IsAdmin reports whether the request context is an administrator session.
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey).(bool)
	return v
}
