package service

import (
	"context"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/fruitbid/server/internal/errs"
	"github.com/fruitbid/server/internal/model"
	"github.com/fruitbid/server/internal/repository"
)

// --- settings ---

type fakeSettings struct {
	m map[string]string
	// failSet injects a one-shot Set error per key
	failSet map[string]error
}

var _ repository.SettingsRepository = (*fakeSettings)(nil)

func newFakeSettings() *fakeSettings { return &fakeSettings{m: map[string]string{}} }

func (f *fakeSettings) Get(_ context.Context, key string) (string, error) {
	v, ok := f.m[key]
	if !ok {
		return "", errs.ErrNotFound
	}
	return v, nil
}

func (f *fakeSettings) Set(_ context.Context, key, value string) error {
	if err := f.failSet[key]; err != nil {
		delete(f.failSet, key)
		return err
	}
	f.m[key] = value
	return nil
}

func (f *fakeSettings) Delete(_ context.Context, key string) error {
	delete(f.m, key)
	return nil
}

func (f *fakeSettings) DeleteByPrefix(_ context.Context, prefix string) error {
	for k := range f.m {
		if strings.HasPrefix(k, prefix) {
			delete(f.m, k)
		}
	}
	return nil
}

func (f *fakeSettings) ClaimMarker(_ context.Context, key, value string) (bool, error) {
	if f.m[key] == value {
		return false, nil
	}
	f.m[key] = value
	return true, nil
}

// --- users ---

type fakeUsers struct {
	byIdent   map[string]*model.User
	createErr error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{byIdent: map[string]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byIdent[u.Identifier]; exists {
		return errs.ErrAlreadyRegistered
	}
	cpy := *u
	f.byIdent[u.Identifier] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byIdent {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	u, ok := f.byIdent[identifier]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.byIdent))
	for _, u := range f.byIdent {
		out = append(out, *u)
	}
	return out, nil
}

// --- otps ---

type fakeOTPs struct {
	byIdent map[string][]model.OTPChallenge
}

var _ repository.OTPRepository = (*fakeOTPs)(nil)

func newFakeOTPs() *fakeOTPs { return &fakeOTPs{byIdent: map[string][]model.OTPChallenge{}} }

func (f *fakeOTPs) Insert(_ context.Context, ch *model.OTPChallenge) error {
	f.byIdent[ch.Identifier] = append(f.byIdent[ch.Identifier], *ch)
	return nil
}

func (f *fakeOTPs) Latest(_ context.Context, identifier string) (*model.OTPChallenge, error) {
	chs := f.byIdent[identifier]
	if len(chs) == 0 {
		return nil, errs.ErrNotFound
	}
	c := chs[len(chs)-1]
	return &c, nil
}

// --- limiter ---

type fakeLimiter struct {
	allow bool
	err   error
	calls int
}

func (l *fakeLimiter) Reserve(context.Context, string) (bool, time.Duration, error) {
	l.calls++
	return l.allow, 0, l.err
}

// --- sender ---

type fakeSender struct {
	err  error
	sent []string
}

func (s *fakeSender) Send(_ context.Context, identifier string, _ model.ContactKind, code string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, identifier+":"+code)
	return nil
}

// --- catalog ---

type fakeCatalog struct {
	items []model.Item
}

var _ repository.CatalogRepository = (*fakeCatalog)(nil)

func (f *fakeCatalog) List(_ context.Context) ([]model.Item, error) {
	out := make([]model.Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeCatalog) Get(_ context.Context, name string) (*model.Item, error) {
	for i := range f.items {
		if f.items[i].Name == name {
			c := f.items[i]
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeCatalog) Add(_ context.Context, it *model.Item) error {
	for i := range f.items {
		if f.items[i].Name == it.Name {
			return errs.ErrDuplicateItem
		}
	}
	f.items = append(f.items, *it)
	return nil
}

func (f *fakeCatalog) UpdateMinBid(_ context.Context, name string, minBid decimal.Decimal) error {
	for i := range f.items {
		if f.items[i].Name == name {
			f.items[i].MinBid = minBid
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeCatalog) Count(_ context.Context) (int, error) { return len(f.items), nil }

// --- bids ---

// fakeBids mirrors the ledger's transactional validation against an
// in-memory catalog.
type fakeBids struct {
	catalog *fakeCatalog
	bids    []model.Bid
}

var _ repository.BidRepository = (*fakeBids)(nil)

func (f *fakeBids) Place(ctx context.Context, b *model.Bid) error {
	it, err := f.catalog.Get(ctx, b.ItemName)
	if err != nil {
		return err
	}
	standing, _ := f.UserStanding(ctx, b.ItemName, b.UserID)
	highest, _ := f.HighestBid(ctx, b.ItemName)
	if err := model.EvaluateBid(b.Amount, standing, it.MarketCap, highest, it.MinBid); err != nil {
		return err
	}
	f.bids = append(f.bids, *b)
	return nil
}

func (f *fakeBids) HighestBid(_ context.Context, itemName string) (decimal.Decimal, error) {
	highest := decimal.Zero
	for _, b := range f.bids {
		if b.ItemName == itemName && b.Amount.GreaterThan(highest) {
			highest = b.Amount
		}
	}
	return highest, nil
}

func (f *fakeBids) UserStanding(_ context.Context, itemName string, userID uuid.UUID) (*decimal.Decimal, error) {
	var standing *decimal.Decimal
	for _, b := range f.bids {
		if b.ItemName == itemName && b.UserID == userID {
			if standing == nil || b.Amount.GreaterThan(*standing) {
				v := b.Amount
				standing = &v
			}
		}
	}
	return standing, nil
}

func (f *fakeBids) ListByItem(_ context.Context, itemName string) ([]model.Bid, error) {
	var out []model.Bid
	for _, b := range f.bids {
		if b.ItemName == itemName {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBids) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Bid, error) {
	var out []model.Bid
	for i := len(f.bids) - 1; i >= 0; i-- {
		if f.bids[i].UserID == userID {
			out = append(out, f.bids[i])
		}
	}
	return out, nil
}

func (f *fakeBids) DeleteAll(context.Context) error {
	f.bids = nil
	return nil
}

// --- lucky dip ---

type fakeLucky struct {
	rows map[string]model.LuckyDip
	// identifiers resolves winners for the report join
	identifiers map[uuid.UUID]string
	// insertErr injects a one-shot Insert failure
	insertErr error
}

var _ repository.LuckyDipRepository = (*fakeLucky)(nil)

func newFakeLucky() *fakeLucky {
	return &fakeLucky{rows: map[string]model.LuckyDip{}, identifiers: map[uuid.UUID]string{}}
}

func (f *fakeLucky) Insert(_ context.Context, ld *model.LuckyDip) error {
	if err := f.insertErr; err != nil {
		f.insertErr = nil
		return err
	}
	if _, exists := f.rows[ld.ItemName]; exists {
		return nil
	}
	f.rows[ld.ItemName] = *ld
	return nil
}

func (f *fakeLucky) Winners(_ context.Context) ([]model.LuckyWinner, error) {
	var out []model.LuckyWinner
	for _, ld := range f.rows {
		out = append(out, model.LuckyWinner{
			ItemName:   ld.ItemName,
			Identifier: f.identifiers[ld.UserID],
			Amount:     ld.Amount,
		})
	}
	return out, nil
}

func (f *fakeLucky) DeleteAll(context.Context) error {
	f.rows = map[string]model.LuckyDip{}
	return nil
}

// --- nutrition ---

type fakeNutrition struct {
	rows map[string]model.Nutrition
}

var _ repository.NutritionRepository = (*fakeNutrition)(nil)

func newFakeNutrition() *fakeNutrition { return &fakeNutrition{rows: map[string]model.Nutrition{}} }

func (f *fakeNutrition) List(_ context.Context) ([]model.Nutrition, error) {
	out := make([]model.Nutrition, 0, len(f.rows))
	for _, n := range f.rows {
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNutrition) Upsert(_ context.Context, n *model.Nutrition) error {
	f.rows[n.ItemName] = *n
	return nil
}

func (f *fakeNutrition) Count(context.Context) (int, error) { return len(f.rows), nil }

// --- pricer ---

type fakePricer struct {
	prices map[string]decimal.Decimal
	calls  int
}

func (p *fakePricer) Price(_ context.Context, item string) decimal.Decimal {
	p.calls++
	if v, ok := p.prices[item]; ok {
		return v
	}
	return decimal.NewFromInt(100)
}
