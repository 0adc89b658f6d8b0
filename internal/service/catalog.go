package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fruitbid/server/internal/cache"
	"github.com/fruitbid/server/internal/errs"
	"github.com/fruitbid/server/internal/model"
	"github.com/fruitbid/server/internal/repository"
)

const (
	cacheKeyItems     = "items"
	cacheKeyNutrition = "nutrition"
)

// defaultItems seeds the catalog on first start.
var defaultItems = []model.Item{
	{Name: "Apple", MinBid: decimal.NewFromInt(100), MarketCap: decimal.NewFromInt(200), BillingRate: model.DefaultBillingRate},
	{Name: "Mosambi", MinBid: decimal.NewFromInt(40), MarketCap: decimal.NewFromInt(60), BillingRate: model.DefaultBillingRate},
	{Name: "Banana", MinBid: decimal.NewFromInt(30), MarketCap: decimal.NewFromInt(50), BillingRate: model.DefaultBillingRate},
	{Name: "Papaya", MinBid: decimal.NewFromInt(40), MarketCap: decimal.NewFromInt(60), BillingRate: model.DefaultBillingRate},
	{Name: "Kiwi", MinBid: decimal.NewFromInt(150), MarketCap: decimal.NewFromInt(250), BillingRate: model.DefaultBillingRate},
	{Name: "Dragon Fruit", MinBid: decimal.NewFromInt(200), MarketCap: decimal.NewFromInt(300), BillingRate: model.DefaultBillingRate},
	{Name: "Pineapple", MinBid: decimal.NewFromInt(50), MarketCap: decimal.NewFromInt(80), BillingRate: model.DefaultBillingRate},
	{Name: "Custard Apple", MinBid: decimal.NewFromInt(80), MarketCap: decimal.NewFromInt(120), BillingRate: model.DefaultBillingRate},
	{Name: "Sapota", MinBid: decimal.NewFromInt(50), MarketCap: decimal.NewFromInt(70), BillingRate: model.DefaultBillingRate},
}

// defaultNutrition seeds the nutrition table on first start.
var defaultNutrition = []model.Nutrition{
	{ItemName: "Apple", Calories: 52, Fiber: 2.4, VitC: 4.6, Potassium: 107, Notes: "Rich in antioxidants"},
	{ItemName: "Banana", Calories: 89, Fiber: 2.6, VitC: 8.7, Potassium: 358, Notes: "Good potassium source"},
	{ItemName: "Papaya", Calories: 43, Fiber: 1.7, VitC: 60.9, Potassium: 182, Notes: "High in Vitamin C"},
	{ItemName: "Kiwi", Calories: 41, Fiber: 3.0, VitC: 92.7, Potassium: 312, Notes: "Boosts immunity"},
	{ItemName: "Dragon Fruit", Calories: 50, Fiber: 3.0, VitC: 9.0, Potassium: 268, Notes: "High in fiber"},
	{ItemName: "Pineapple", Calories: 50, Fiber: 1.4, VitC: 47.8, Potassium: 109, Notes: "Aids digestion"},
	{ItemName: "Custard Apple", Calories: 94, Fiber: 2.4, VitC: 36.3, Potassium: 382, Notes: "High in calories"},
	{ItemName: "Sapota", Calories: 83, Fiber: 5.3, VitC: 14.7, Potassium: 193, Notes: "Rich in dietary fiber"},
}

// CatalogService manages items, the discount setting, and nutrition metadata.
type CatalogService interface {
	// Items returns the catalog, served from the TTL cache.
	Items(ctx context.Context) ([]model.Item, error)
	// Item returns a single catalog entry.
	Item(ctx context.Context, name string) (*model.Item, error)
	// AddItem inserts a new item and invalidates the item cache.
	AddItem(ctx context.Context, name string, minBid, marketCap decimal.Decimal) error
	// UpdateMinBid overwrites an item's minimum bid.
	UpdateMinBid(ctx context.Context, name string, minBid decimal.Decimal) error
	// Discount returns the configured discount percentage (default 20).
	Discount(ctx context.Context) (decimal.Decimal, error)
	// SetDiscount stores the discount percentage (0..100) and invalidates
	// dependent price caches.
	SetDiscount(ctx context.Context, pct decimal.Decimal) error
	// Nutrition returns all nutrition rows, served from the TTL cache.
	Nutrition(ctx context.Context) ([]model.Nutrition, error)
	// UpsertNutrition stores nutrition metadata for a catalog item.
	UpsertNutrition(ctx context.Context, n model.Nutrition) error
	// EnsureDefaults seeds items, nutrition, discount, and the cycle start
	// on first run. Safe to call repeatedly.
	EnsureDefaults(ctx context.Context, now time.Time) error
}

type CatalogServiceImpl struct {
	items     repository.CatalogRepository
	nutrition repository.NutritionRepository
	settings  repository.SettingsRepository
	cache     *cache.TTL

	// onDiscountChange invalidates caches derived from the discount.
	onDiscountChange func()
}

// NewCatalogService constructs CatalogService. onDiscountChange may be nil.
func NewCatalogService(
	items repository.CatalogRepository,
	nutrition repository.NutritionRepository,
	settings repository.SettingsRepository,
	c *cache.TTL,
	onDiscountChange func(),
) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		items:            items,
		nutrition:        nutrition,
		settings:         settings,
		cache:            c,
		onDiscountChange: onDiscountChange,
	}
}

// Items returns the catalog, cached.
func (s *CatalogServiceImpl) Items(ctx context.Context) ([]model.Item, error) {
	if v, ok := s.cache.Get(cacheKeyItems); ok {
		return v.([]model.Item), nil
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Put(cacheKeyItems, items)
	return items, nil
}

// Item returns a single catalog entry, bypassing the cache.
func (s *CatalogServiceImpl) Item(ctx context.Context, name string) (*model.Item, error) {
	return s.items.Get(ctx, name)
}

// AddItem inserts a new item.
func (s *CatalogServiceImpl) AddItem(ctx context.Context, name string, minBid, marketCap decimal.Decimal) error {
	if name == "" {
		return errors.New("validation: empty item name")
	}
	if minBid.IsNegative() || marketCap.IsNegative() {
		return errors.New("validation: negative min bid or market cap")
	}
	if marketCap.LessThan(minBid) {
		return errors.New("validation: market cap below min bid")
	}
	it := &model.Item{Name: name, MinBid: minBid, MarketCap: marketCap, BillingRate: model.DefaultBillingRate}
	if err := s.items.Add(ctx, it); err != nil {
		return err
	}
	s.cache.Invalidate(cacheKeyItems)
	return nil
}

// UpdateMinBid overwrites an item's minimum bid.
func (s *CatalogServiceImpl) UpdateMinBid(ctx context.Context, name string, minBid decimal.Decimal) error {
	if minBid.IsNegative() {
		return errors.New("validation: negative min bid")
	}
	if err := s.items.UpdateMinBid(ctx, name, minBid); err != nil {
		return err
	}
	s.cache.Invalidate(cacheKeyItems)
	return nil
}

// Discount returns the configured discount percentage.
func (s *CatalogServiceImpl) Discount(ctx context.Context) (decimal.Decimal, error) {
	v, err := s.settings.Get(ctx, SettingDiscount)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return decimal.NewFromInt(DefaultDiscountPct), nil
		}
		return decimal.Zero, err
	}
	return decimal.NewFromString(v)
}

// SetDiscount stores the discount percentage for the cycle.
func (s *CatalogServiceImpl) SetDiscount(ctx context.Context, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("validation: discount must be between 0 and 100")
	}
	if err := s.settings.Set(ctx, SettingDiscount, pct.String()); err != nil {
		return err
	}
	if s.onDiscountChange != nil {
		s.onDiscountChange()
	}
	return nil
}

// Nutrition returns all nutrition rows, cached.
func (s *CatalogServiceImpl) Nutrition(ctx context.Context) ([]model.Nutrition, error) {
	if v, ok := s.cache.Get(cacheKeyNutrition); ok {
		return v.([]model.Nutrition), nil
	}
	rows, err := s.nutrition.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Put(cacheKeyNutrition, rows)
	return rows, nil
}

// UpsertNutrition stores nutrition metadata for an existing catalog item.
func (s *CatalogServiceImpl) UpsertNutrition(ctx context.Context, n model.Nutrition) error {
	if n.ItemName == "" {
		return errors.New("validation: empty item name")
	}
	if _, err := s.items.Get(ctx, n.ItemName); err != nil {
		return err
	}
	if err := s.nutrition.Upsert(ctx, &n); err != nil {
		return err
	}
	s.cache.Invalidate(cacheKeyNutrition)
	return nil
}

// EnsureDefaults seeds initial state on first run.
func (s *CatalogServiceImpl) EnsureDefaults(ctx context.Context, now time.Time) error {
	n, err := s.items.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		for i := range defaultItems {
			if err := s.items.Add(ctx, &defaultItems[i]); err != nil {
				return err
			}
		}
	}

	n, err = s.nutrition.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		for i := range defaultNutrition {
			if err := s.nutrition.Upsert(ctx, &defaultNutrition[i]); err != nil {
				return err
			}
		}
	}

	if _, err := s.settings.Get(ctx, SettingDiscount); errors.Is(err, errs.ErrNotFound) {
		if err := s.settings.Set(ctx, SettingDiscount, decimal.NewFromInt(DefaultDiscountPct).String()); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if _, err := s.settings.Get(ctx, SettingBidStart); errors.Is(err, errs.ErrNotFound) {
		if err := s.settings.Set(ctx, SettingBidStart, now.Format(time.RFC3339Nano)); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	return nil
}
