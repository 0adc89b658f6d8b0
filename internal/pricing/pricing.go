// Package pricing supplies per-item reference market prices with a static
// fallback table, cached with a short TTL.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fruitbid/server/internal/cache"
	"github.com/fruitbid/server/internal/errs"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fallbackPrices covers the default catalog; unknown items price at 100.
var fallbackPrices = map[string]int64{
	"Apple": 200, "Mosambi": 50, "Banana": 40, "Papaya": 50, "Kiwi": 200,
	"Dragon Fruit": 250, "Pineapple": 60, "Custard Apple": 100, "Sapota": 60,
	"Mango": 120, "Spinach": 30, "Honey": 300,
}

const defaultPrice = 100

// Source resolves a reference price for an item.
type Source interface {
	ReferencePrice(ctx context.Context, item string) (decimal.Decimal, error)
}

// HTTPSource queries a price API: GET <baseURL>?item=<name> returning
// {"price": <number>}.
type HTTPSource struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPSource constructs a price API client.
func NewHTTPSource(client *http.Client, baseURL, apiKey string) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{client: client, baseURL: baseURL, apiKey: apiKey}
}

// ReferencePrice fetches the live price for an item.
func (s *HTTPSource) ReferencePrice(ctx context.Context, item string) (decimal.Decimal, error) {
	if s.baseURL == "" {
		return decimal.Zero, fmt.Errorf("%w: price api not configured", errs.ErrExternalDegraded)
	}
	u := s.baseURL + "?item=" + url.QueryEscape(item)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", errs.ErrExternalDegraded, err)
	}
	if s.apiKey != "" {
		req.Header.Set("API-KEY", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", errs.ErrExternalDegraded, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: price api status %d", errs.ErrExternalDegraded, resp.StatusCode)
	}
	var body struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", errs.ErrExternalDegraded, err)
	}
	return body.Price, nil
}

// Service resolves reference prices, caching results and falling back to
// the static table when the API is unavailable. Price lookups never fail.
type Service struct {
	src   Source
	cache *cache.TTL
	log   *zap.Logger
}

// NewService constructs a pricing service around a source and a TTL cache.
func NewService(src Source, c *cache.TTL, log *zap.Logger) *Service {
	return &Service{src: src, cache: c, log: log}
}

// Price returns the reference price for an item.
func (s *Service) Price(ctx context.Context, item string) decimal.Decimal {
	if v, ok := s.cache.Get(item); ok {
		return v.(decimal.Decimal)
	}
	p, err := s.src.ReferencePrice(ctx, item)
	if err != nil {
		s.log.Warn("price lookup degraded, using fallback", zap.String("item", item), zap.Error(err))
		p = Fallback(item)
	}
	s.cache.Put(item, p)
	return p
}

// Invalidate drops all cached prices; called when the discount changes.
func (s *Service) Invalidate() { s.cache.Purge() }

// Fallback returns the static reference price for an item.
func Fallback(item string) decimal.Decimal {
	if v, ok := fallbackPrices[item]; ok {
		return decimal.NewFromInt(v)
	}
	return decimal.NewFromInt(defaultPrice)
}
