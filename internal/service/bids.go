package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/fruitbid/server/internal/errs"
	"github.com/fruitbid/server/internal/model"
	"github.com/fruitbid/server/internal/repository"
)

// BidService exposes cycle status and bid placement.
type BidService interface {
	// Status derives the current cycle window from the stored start.
	Status(ctx context.Context, now time.Time) (model.CycleStatus, error)
	// PlaceBid appends a validated bid while the window is open.
	PlaceBid(ctx context.Context, userID uuid.UUID, itemName string, amount decimal.Decimal, now time.Time) error
	// UserBids returns the user's bids, newest first.
	UserBids(ctx context.Context, userID uuid.UUID) ([]model.Bid, error)
}

type BidServiceImpl struct {
	bids     repository.BidRepository
	settings repository.SettingsRepository
}

// NewBidService constructs BidService.
func NewBidService(bids repository.BidRepository, settings repository.SettingsRepository) *BidServiceImpl {
	return &BidServiceImpl{bids: bids, settings: settings}
}

// cycleStart reads and parses the bid_start setting.
func cycleStart(ctx context.Context, settings repository.SettingsRepository) (time.Time, string, error) {
	raw, err := settings.Get(ctx, SettingBidStart)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return time.Time{}, "", fmt.Errorf("%w: bid cycle not initialized", errs.ErrStoreUnavailable)
		}
		return time.Time{}, "", err
	}
	start, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("parse %s: %w", SettingBidStart, err)
	}
	return start, raw, nil
}

// Status derives the cycle window state from bid_start.
func (s *BidServiceImpl) Status(ctx context.Context, now time.Time) (model.CycleStatus, error) {
	start, _, err := cycleStart(ctx, s.settings)
	if err != nil {
		return model.CycleStatus{}, err
	}
	return model.NewCycleStatus(start, now), nil
}

// PlaceBid validates the window, then delegates the ordered acceptance
// checks and the append to the ledger transaction.
func (s *BidServiceImpl) PlaceBid(ctx context.Context, userID uuid.UUID, itemName string, amount decimal.Decimal, now time.Time) error {
	if userID == uuid.Nil {
		return errors.New("validation: empty userID")
	}
	if itemName == "" {
		return errors.New("validation: empty item name")
	}
	if !amount.IsPositive() {
		return errors.New("validation: bid amount must be positive")
	}

	st, err := s.Status(ctx, now)
	if err != nil {
		return err
	}
	if !st.Open {
		return errs.ErrBiddingClosed
	}

	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	return s.bids.Place(ctx, &model.Bid{
		ID:       id,
		ItemName: itemName,
		UserID:   userID,
		Amount:   amount,
		PlacedAt: now,
	})
}

// UserBids returns the user's bids, newest first.
func (s *BidServiceImpl) UserBids(ctx context.Context, userID uuid.UUID) ([]model.Bid, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty userID")
	}
	return s.bids.ListByUser(ctx, userID)
}
