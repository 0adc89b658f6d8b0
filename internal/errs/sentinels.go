// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates a temporary block on OTP requests.
	ErrRateLimited = errors.New("rate limited")

	// ErrStoreUnavailable indicates the database could not be reached or initialized.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Registration and OTP verification.
var (
	// ErrAlreadyRegistered indicates the contact identifier already has a verified user.
	ErrAlreadyRegistered = errors.New("already registered")

	// ErrChallengeExpired indicates the newest OTP challenge has passed its expiry.
	ErrChallengeExpired = errors.New("challenge expired")

	// ErrChallengeMismatch indicates the submitted code does not match the newest challenge.
	ErrChallengeMismatch = errors.New("challenge mismatch")
)

// Catalog and bidding.
var (
	// ErrDuplicateItem indicates an item with that name already exists.
	ErrDuplicateItem = errors.New("duplicate item")

	// ErrDuplicateOrLowerBid indicates the user already holds an equal or higher bid.
	ErrDuplicateOrLowerBid = errors.New("duplicate or lower bid")

	// ErrBidExceedsCap indicates the bid is above the item's market cap.
	ErrBidExceedsCap = errors.New("bid exceeds market cap")

	// ErrBidBelowHighest indicates the bid does not beat the current highest bid.
	ErrBidBelowHighest = errors.New("bid below current highest")

	// ErrBidBelowMinimum indicates the bid is under the item's minimum bid.
	ErrBidBelowMinimum = errors.New("bid below minimum")

	// ErrBiddingClosed indicates the cycle's 3-day window has elapsed.
	ErrBiddingClosed = errors.New("bidding closed")
)

// ErrExternalDegraded marks a failed price or SMS lookup. Always recoverable
// via fallback; callers log it and continue, it never aborts an action.
var ErrExternalDegraded = errors.New("external service degraded")
