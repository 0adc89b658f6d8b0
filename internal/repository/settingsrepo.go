package repository

import "context"

// SettingsRepository is the key-value configuration store. Values are
// uninterpreted strings; callers own parsing (numeric strings, RFC 3339).
type SettingsRepository interface {
	// Get returns the value for key, or errs.ErrNotFound when absent.
	Get(ctx context.Context, key string) (string, error)
	// Set upserts the value for key.
	Set(ctx context.Context, key, value string) error
	// Delete removes the key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix removes all keys starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
	// ClaimMarker conditionally sets key to value and reports whether this
	// caller won the claim. Exactly one of any number of concurrent callers
	// passing the same value observes true; the write and the check are a
	// single statement, so there is no read-then-write window.
	ClaimMarker(ctx context.Context, key, value string) (bool, error)
}
