// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// ContactKind distinguishes mobile and email identifiers for OTP delivery.
type ContactKind string

const (
	ContactMobile ContactKind = "mobile"
	ContactEmail  ContactKind = "email"
)

// User is a verified bidder account, keyed by its contact identifier.
type User struct {
	ID         uuid.UUID // PK
	Identifier string    // mobile (+91..........) or email, unique
	Address    string    // delivery address captured at registration
	Verified   bool      // always true once created; kept for admin tooling
	CreatedAt  time.Time
}

// Item is a catalog entry. Name is the unique key; items are never deleted.
type Item struct {
	Name        string
	MinBid      decimal.Decimal
	MarketCap   decimal.Decimal
	BillingRate decimal.Decimal // stored rate; DefaultBillingRate when unset
}

// DefaultBillingRate is used when an item has no stored billing rate.
var DefaultBillingRate = decimal.NewFromFloat(0.05)

// Bid is one append-only ledger row.
type Bid struct {
	ID       uuid.UUID
	ItemName string
	UserID   uuid.UUID
	Amount   decimal.Decimal
	PlacedAt time.Time
}

// OTPChallenge is a pending registration gated by a time-limited code.
// The delivery address travels with the challenge so that verification
// can create the user without any session state.
type OTPChallenge struct {
	Identifier string
	Code       string
	Address    string
	ExpiresAt  time.Time
}

// LuckyDip is the per-item random winner drawn after the cycle closes.
type LuckyDip struct {
	ItemName string
	UserID   uuid.UUID
	Amount   decimal.Decimal
}

// LuckyWinner joins a lucky dip row with the winner's contact identifier.
type LuckyWinner struct {
	ItemName   string
	Identifier string
	Amount     decimal.Decimal
}

// Nutrition holds per-100g metadata shown for health awareness.
type Nutrition struct {
	ItemName  string
	Calories  float64
	Fiber     float64
	VitC      float64
	Potassium float64
	Notes     string
}

// Tokens collects an issued access token.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// BidWindow is the length of one bidding cycle.
const BidWindow = 72 * time.Hour

// DeliveryOffset is when delivery is scheduled relative to cycle start.
const DeliveryOffset = 96 * time.Hour

// CycleStatus describes the current bidding cycle relative to now.
type CycleStatus struct {
	BidStart     time.Time
	Open         bool
	DaysElapsed  int
	Remaining    time.Duration // zero once closed
	DeliveryDate time.Time     // shown after the window closes
}

// NewCycleStatus derives the window state from the cycle start timestamp.
// Bidding stays open while strictly less than three full days have elapsed.
func NewCycleStatus(bidStart, now time.Time) CycleStatus {
	elapsed := now.Sub(bidStart)
	days := int(elapsed.Hours() / 24)
	st := CycleStatus{
		BidStart:     bidStart,
		Open:         days < 3,
		DaysElapsed:  days,
		DeliveryDate: bidStart.Add(DeliveryOffset),
	}
	if st.Open {
		st.Remaining = BidWindow - elapsed
	}
	return st
}
