package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fruitbid/server/internal/errs"
	"github.com/fruitbid/server/internal/model"
	"github.com/fruitbid/server/internal/repository"
)

// Pricer resolves reference prices. Lookups never fail; degraded sources
// fall back to the static table.
type Pricer interface {
	Price(ctx context.Context, item string) decimal.Decimal
}

// BillingService resolves a closed cycle: computes discounted billing rates
// once, draws lucky dip winners once, and handles admin cycle resets.
type BillingService interface {
	// Settle runs the billing and lucky-dip passes if the window has closed
	// and they have not yet run for this cycle. No-op while bidding is open.
	Settle(ctx context.Context, now time.Time) error
	// ResetCycle starts a new cycle at now, clearing all derived state.
	ResetCycle(ctx context.Context, now time.Time) error
}

type BillingServiceImpl struct {
	settings repository.SettingsRepository
	catalog  repository.CatalogRepository
	bids     repository.BidRepository
	lucky    repository.LuckyDipRepository
	prices   Pricer
	log      *zap.Logger

	// pick selects a winner index from n bids; swapped out in tests.
	pick func(n int) int
	// onReset hooks invalidate caches after a cycle reset.
	onReset []func()
}

// NewBillingService constructs BillingService.
func NewBillingService(
	settings repository.SettingsRepository,
	catalog repository.CatalogRepository,
	bids repository.BidRepository,
	lucky repository.LuckyDipRepository,
	prices Pricer,
	log *zap.Logger,
	onReset ...func(),
) *BillingServiceImpl {
	return &BillingServiceImpl{
		settings: settings,
		catalog:  catalog,
		bids:     bids,
		lucky:    lucky,
		prices:   prices,
		log:      log,
		pick:     rand.IntN,
		onReset:  onReset,
	}
}

// Settle runs both passes at most once per cycle. Each pass claims the
// cycle through an atomic conditional update on its marker, so concurrent
// requests that observe the closed window race for a single winner.
func (s *BillingServiceImpl) Settle(ctx context.Context, now time.Time) error {
	start, cycleTag, err := cycleStart(ctx, s.settings)
	if err != nil {
		return err
	}
	if model.NewCycleStatus(start, now).Open {
		return nil
	}

	if err := s.billingPass(ctx, cycleTag); err != nil {
		return err
	}
	return s.luckyDipPass(ctx, cycleTag)
}

// billingPass computes billing_<item> = reference_price * (1 - discount/100)
// for every item, once per cycle. A failure after the claim releases the
// marker so a later request can rerun the whole pass; recomputed rates
// simply overwrite any partial writes.
func (s *BillingServiceImpl) billingPass(ctx context.Context, cycleTag string) error {
	won, err := s.settings.ClaimMarker(ctx, SettingBillingDone, cycleTag)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}
	s.log.Info("billing pass claimed", zap.String("cycle", cycleTag))

	if err := s.computeBillingRates(ctx); err != nil {
		s.releaseClaim(ctx, SettingBillingDone)
		return err
	}
	return nil
}

func (s *BillingServiceImpl) computeBillingRates(ctx context.Context) error {
	discount, err := s.discount(ctx)
	if err != nil {
		return err
	}
	factor := decimal.NewFromInt(1).Sub(discount.Div(decimal.NewFromInt(100)))

	items, err := s.catalog.List(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		billing := s.prices.Price(ctx, it.Name).Mul(factor)
		if err := s.settings.Set(ctx, BillingKeyPrefix+it.Name, billing.String()); err != nil {
			return err
		}
	}
	return nil
}

// releaseClaim hands the cycle back after a failed pass. A failed release
// is only logged: the marker then stays claimed and the cycle finishes
// half-resolved, which an admin reset clears.
func (s *BillingServiceImpl) releaseClaim(ctx context.Context, key string) {
	if err := s.settings.Delete(ctx, key); err != nil {
		s.log.Error("release cycle claim", zap.String("key", key), zap.Error(err))
	}
}

// luckyDipPass draws one uniformly-random winner per item from the item's
// full bid list, once per cycle. Items without bids get no winner. Like the
// billing pass, a mid-draw failure releases the claim; already-inserted
// winners survive the retry because inserts ignore conflicts.
func (s *BillingServiceImpl) luckyDipPass(ctx context.Context, cycleTag string) error {
	won, err := s.settings.ClaimMarker(ctx, SettingLuckyDone, cycleTag)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}
	s.log.Info("lucky dip claimed", zap.String("cycle", cycleTag))

	if err := s.drawWinners(ctx); err != nil {
		s.releaseClaim(ctx, SettingLuckyDone)
		return err
	}
	return nil
}

func (s *BillingServiceImpl) drawWinners(ctx context.Context) error {
	items, err := s.catalog.List(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		bids, err := s.bids.ListByItem(ctx, it.Name)
		if err != nil {
			return err
		}
		if len(bids) == 0 {
			continue
		}
		w := bids[s.pick(len(bids))]
		ld := &model.LuckyDip{ItemName: it.Name, UserID: w.UserID, Amount: w.Amount}
		if err := s.lucky.Insert(ctx, ld); err != nil {
			return err
		}
	}
	return nil
}

// ResetCycle starts a new cycle: bids, winners, markers, and cached billing
// rates are cleared, and bidding reopens immediately.
func (s *BillingServiceImpl) ResetCycle(ctx context.Context, now time.Time) error {
	if err := s.settings.Set(ctx, SettingBidStart, now.Format(time.RFC3339Nano)); err != nil {
		return err
	}
	if err := s.bids.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.lucky.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.settings.Delete(ctx, SettingBillingDone); err != nil {
		return err
	}
	if err := s.settings.Delete(ctx, SettingLuckyDone); err != nil {
		return err
	}
	if err := s.settings.DeleteByPrefix(ctx, BillingKeyPrefix); err != nil {
		return err
	}
	for _, hook := range s.onReset {
		hook()
	}
	return nil
}

func (s *BillingServiceImpl) discount(ctx context.Context) (decimal.Decimal, error) {
	v, err := s.settings.Get(ctx, SettingDiscount)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return decimal.NewFromInt(DefaultDiscountPct), nil
		}
		return decimal.Zero, err
	}
	return decimal.NewFromString(v)
}
