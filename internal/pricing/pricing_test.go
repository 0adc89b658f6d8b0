package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fruitbid/server/internal/cache"
	"github.com/fruitbid/server/internal/errs"
)

type stubSource struct {
	price decimal.Decimal
	err   error
	calls int
}

func (s *stubSource) ReferencePrice(context.Context, string) (decimal.Decimal, error) {
	s.calls++
	return s.price, s.err
}

func newPriceCache(t *testing.T) *cache.TTL {
	t.Helper()
	c, err := cache.New(16, time.Minute)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	return c
}

func TestService_Price_CachesSource(t *testing.T) {
	t.Parallel()
	src := &stubSource{price: decimal.NewFromInt(210)}
	s := NewService(src, newPriceCache(t), zap.NewNop())

	for i := 0; i < 3; i++ {
		p := s.Price(context.Background(), "Apple")
		if !p.Equal(decimal.NewFromInt(210)) {
			t.Fatalf("want 210, got %s", p)
		}
	}
	if src.calls != 1 {
		t.Fatalf("source hit %d times, want 1", src.calls)
	}
}

func TestService_Price_FallbackOnDegradedSource(t *testing.T) {
	t.Parallel()
	src := &stubSource{err: errs.ErrExternalDegraded}
	s := NewService(src, newPriceCache(t), zap.NewNop())

	if p := s.Price(context.Background(), "Apple"); !p.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("want fallback 200, got %s", p)
	}
	if p := s.Price(context.Background(), "Unknown Fruit"); !p.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("want default 100, got %s", p)
	}
}

func TestService_Invalidate(t *testing.T) {
	t.Parallel()
	src := &stubSource{price: decimal.NewFromInt(210)}
	s := NewService(src, newPriceCache(t), zap.NewNop())

	s.Price(context.Background(), "Apple")
	s.Invalidate()
	s.Price(context.Background(), "Apple")

	if src.calls != 2 {
		t.Fatalf("source hit %d times after invalidation, want 2", src.calls)
	}
}

func TestHTTPSource_ReferencePrice(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("item") != "Apple" {
			t.Errorf("unexpected item %q", r.URL.Query().Get("item"))
		}
		if r.Header.Get("API-KEY") != "k" {
			t.Error("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"price": 215.5}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), srv.URL, "k")
	p, err := src.ReferencePrice(context.Background(), "Apple")
	if err != nil {
		t.Fatalf("ReferencePrice: %v", err)
	}
	if !p.Equal(decimal.NewFromFloat(215.5)) {
		t.Fatalf("want 215.5, got %s", p)
	}
}

func TestHTTPSource_DegradedStatuses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), srv.URL, "")
	if _, err := src.ReferencePrice(context.Background(), "Apple"); !errors.Is(err, errs.ErrExternalDegraded) {
		t.Fatalf("want ErrExternalDegraded on 502, got %v", err)
	}

	unconfigured := NewHTTPSource(nil, "", "")
	if _, err := unconfigured.ReferencePrice(context.Background(), "Apple"); !errors.Is(err, errs.ErrExternalDegraded) {
		t.Fatalf("want ErrExternalDegraded without base URL, got %v", err)
	}
}
