package model

import (
	"github.com/fruitbid/server/internal/errs"
	"github.com/shopspring/decimal"
)

// EvaluateBid applies the bid acceptance rules in their fixed order:
// own standing, market cap, global highest, minimum. The order is part of
// the contract because each rejection carries a distinct user-facing reason.
// standing is nil when the user has no prior bid on the item.
func EvaluateBid(amount decimal.Decimal, standing *decimal.Decimal, marketCap, highest, minBid decimal.Decimal) error {
	if standing != nil && amount.LessThanOrEqual(*standing) {
		return errs.ErrDuplicateOrLowerBid
	}
	if amount.GreaterThan(marketCap) {
		return errs.ErrBidExceedsCap
	}
	if amount.LessThanOrEqual(highest) {
		return errs.ErrBidBelowHighest
	}
	if amount.LessThan(minBid) {
		return errs.ErrBidBelowMinimum
	}
	return nil
}
