// Package limiter throttles OTP challenge requests per contact identifier.
package limiter

import (
	"context"
	"time"
)

// Limiter bounds how often a new challenge may be issued for an identifier.
type Limiter interface {
	// Reserve records a challenge request and reports whether it is allowed,
	// with an optional retry-after when denied.
	Reserve(ctx context.Context, identifier string) (bool, time.Duration, error)
}
