package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fruitbid/server/internal/errs"
	"github.com/fruitbid/server/internal/model"
	"github.com/fruitbid/server/internal/repository"
)

// ItemReport is one catalog row in a report snapshot.
type ItemReport struct {
	Name        string          `json:"name"`
	MinBid      decimal.Decimal `json:"min_bid"`
	MarketCap   decimal.Decimal `json:"market_cap"`
	HighestBid  decimal.Decimal `json:"highest_bid"`
	BillingRate decimal.Decimal `json:"billing_rate"`
	LuckyWinner string          `json:"lucky_winner"` // "No Bids" when absent
}

// UserReport is one registered user in a report snapshot.
type UserReport struct {
	Identifier string `json:"identifier"`
	Address    string `json:"address"`
}

// Snapshot carries everything the external reporting collaborator needs to
// render charts and the PDF export. Purely presentational data; assembling
// it never mutates core state.
type Snapshot struct {
	GeneratedAt time.Time         `json:"generated_at"`
	DiscountPct decimal.Decimal   `json:"discount_pct"`
	Cycle       model.CycleStatus `json:"cycle"`
	Items       []ItemReport      `json:"items"`
	Users       []UserReport      `json:"users"`
	Nutrition   []model.Nutrition `json:"nutrition"`
}

// ReportService assembles report snapshots.
type ReportService interface {
	Snapshot(ctx context.Context, now time.Time) (*Snapshot, error)
}

type ReportServiceImpl struct {
	catalog  repository.CatalogRepository
	bids     repository.BidRepository
	lucky    repository.LuckyDipRepository
	users    repository.UserRepository
	nutr     repository.NutritionRepository
	settings repository.SettingsRepository
	billing  BillingService
	log      *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(
	catalog repository.CatalogRepository,
	bids repository.BidRepository,
	lucky repository.LuckyDipRepository,
	users repository.UserRepository,
	nutr repository.NutritionRepository,
	settings repository.SettingsRepository,
	billing BillingService,
	log *zap.Logger,
) *ReportServiceImpl {
	return &ReportServiceImpl{
		catalog:  catalog,
		bids:     bids,
		lucky:    lucky,
		users:    users,
		nutr:     nutr,
		settings: settings,
		billing:  billing,
		log:      log,
	}
}

// Snapshot assembles the current item, user, and nutrition state. Observing
// a closed cycle here resolves it the same way the status endpoint does, so
// a report-only consumer still sees settled rates and winners; a failed
// settle is logged and the snapshot renders from whatever state exists.
func (s *ReportServiceImpl) Snapshot(ctx context.Context, now time.Time) (*Snapshot, error) {
	if err := s.billing.Settle(ctx, now); err != nil {
		s.log.Warn("settle before report failed", zap.Error(err))
	}

	start, _, err := cycleStart(ctx, s.settings)
	if err != nil {
		return nil, err
	}

	discount := decimal.NewFromInt(DefaultDiscountPct)
	if raw, err := s.settings.Get(ctx, SettingDiscount); err == nil {
		if d, perr := decimal.NewFromString(raw); perr == nil {
			discount = d
		}
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	items, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	winners, err := s.lucky.Winners(ctx)
	if err != nil {
		return nil, err
	}
	winnerByItem := make(map[string]model.LuckyWinner, len(winners))
	for _, w := range winners {
		winnerByItem[w.ItemName] = w
	}

	reports := make([]ItemReport, 0, len(items))
	for _, it := range items {
		highest, err := s.bids.HighestBid(ctx, it.Name)
		if err != nil {
			return nil, err
		}

		// Prefer the cycle's computed billing rate; fall back to the
		// catalog column when billing has not run yet.
		rate := it.BillingRate
		if raw, err := s.settings.Get(ctx, BillingKeyPrefix+it.Name); err == nil {
			if v, perr := decimal.NewFromString(raw); perr == nil {
				rate = v
			}
		} else if !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}

		winner := "No Bids"
		if w, ok := winnerByItem[it.Name]; ok {
			winner = w.Identifier + " " + w.Amount.String() + " INR"
		}

		reports = append(reports, ItemReport{
			Name:        it.Name,
			MinBid:      it.MinBid,
			MarketCap:   it.MarketCap,
			HighestBid:  highest,
			BillingRate: rate,
			LuckyWinner: winner,
		})
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	userReports := make([]UserReport, 0, len(users))
	for _, u := range users {
		userReports = append(userReports, UserReport{Identifier: u.Identifier, Address: u.Address})
	}

	nutrition, err := s.nutr.List(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		GeneratedAt: now,
		DiscountPct: discount,
		Cycle:       model.NewCycleStatus(start, now),
		Items:       reports,
		Users:       userReports,
		Nutrition:   nutrition,
	}, nil
}
