// Package service contains application services for authentication, the
// catalog, the bid ledger, billing resolution, and reporting.
package service

// Settings keys shared across services.
const (
	// SettingDiscount holds the cycle discount percentage as a numeric string.
	SettingDiscount = "discount_pct"
	// SettingBidStart holds the cycle start timestamp (RFC 3339).
	SettingBidStart = "bid_start"
	// SettingBillingDone holds the cycle tag once billing has run.
	SettingBillingDone = "billing_calculated"
	// SettingLuckyDone holds the cycle tag once the lucky dip has been drawn.
	SettingLuckyDone = "lucky_dip_drawn"
	// BillingKeyPrefix prefixes per-item cached billing rates.
	BillingKeyPrefix = "billing_"
)

// DefaultDiscountPct applies when no discount has been configured.
const DefaultDiscountPct = 20
