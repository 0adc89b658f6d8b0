package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fruitbid/server/internal/model"
)

func reportForTest(settings *fakeSettings, ledger *fakeBids, lucky *fakeLucky, users *fakeUsers, nutrition *fakeNutrition, prices *fakePricer) *ReportServiceImpl {
	billing := billingForTest(settings, ledger.catalog, ledger, lucky, prices)
	billing.pick = func(n int) int { return 0 }
	return NewReportService(ledger.catalog, ledger, lucky, users, nutrition, settings, billing, zap.NewNop())
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	settings := openCycle(t, now.Add(-4*24*time.Hour))
	settings.m[SettingDiscount] = "25"
	settings.m[BillingKeyPrefix+"Apple"] = "150"
	// Cycle already resolved; the snapshot must not recompute anything.
	settings.m[SettingBillingDone] = settings.m[SettingBidStart]
	settings.m[SettingLuckyDone] = settings.m[SettingBidStart]

	catalog := twoItemCatalog()
	ledger := &fakeBids{catalog: catalog}
	lucky := newFakeLucky()
	users := newFakeUsers()

	alice := mustUUID(t)
	_ = users.Create(context.Background(), &model.User{ID: alice, Identifier: testMobile, Address: testAddress})
	ledger.bids = []model.Bid{
		{ItemName: "Apple", UserID: alice, Amount: decimal.NewFromInt(120)},
		{ItemName: "Apple", UserID: alice, Amount: decimal.NewFromInt(180)},
	}
	lucky.identifiers[alice] = testMobile
	_ = lucky.Insert(context.Background(), &model.LuckyDip{ItemName: "Apple", UserID: alice, Amount: decimal.NewFromInt(120)})

	nutrition := newFakeNutrition()
	_ = nutrition.Upsert(context.Background(), &model.Nutrition{ItemName: "Apple", Calories: 52})

	s := reportForTest(settings, ledger, lucky, users, nutrition, &fakePricer{})

	snap, err := s.Snapshot(context.Background(), now)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if !snap.DiscountPct.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("want discount 25, got %s", snap.DiscountPct)
	}
	if snap.Cycle.Open {
		t.Fatal("cycle should be closed in fixture")
	}
	if len(snap.Items) != 2 {
		t.Fatalf("want 2 item reports, got %d", len(snap.Items))
	}

	byName := map[string]ItemReport{}
	for _, it := range snap.Items {
		byName[it.Name] = it
	}

	apple := byName["Apple"]
	if !apple.HighestBid.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("want highest 180, got %s", apple.HighestBid)
	}
	// The settled rate wins over the catalog column.
	if !apple.BillingRate.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("want settled billing rate 150, got %s", apple.BillingRate)
	}
	if apple.LuckyWinner != testMobile+" 120 INR" {
		t.Fatalf("unexpected winner line: %q", apple.LuckyWinner)
	}

	banana := byName["Banana"]
	if !banana.HighestBid.Equal(decimal.Zero) {
		t.Fatalf("want zero highest for Banana, got %s", banana.HighestBid)
	}
	if !banana.BillingRate.Equal(model.DefaultBillingRate) {
		t.Fatalf("want catalog billing rate fallback, got %s", banana.BillingRate)
	}
	if banana.LuckyWinner != "No Bids" {
		t.Fatalf("want \"No Bids\", got %q", banana.LuckyWinner)
	}

	if len(snap.Users) != 1 || snap.Users[0].Identifier != testMobile || snap.Users[0].Address != testAddress {
		t.Fatalf("unexpected users: %+v", snap.Users)
	}
	if len(snap.Nutrition) != 1 {
		t.Fatalf("want 1 nutrition row, got %d", len(snap.Nutrition))
	}
}

func TestSnapshot_SettlesClosedCycle(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	settings := openCycle(t, now.Add(-4*24*time.Hour))
	settings.m[SettingDiscount] = "20"

	catalog := twoItemCatalog()
	ledger := &fakeBids{catalog: catalog}
	lucky := newFakeLucky()
	users := newFakeUsers()

	alice := mustUUID(t)
	_ = users.Create(context.Background(), &model.User{ID: alice, Identifier: testMobile, Address: testAddress})
	lucky.identifiers[alice] = testMobile
	ledger.bids = []model.Bid{{ItemName: "Apple", UserID: alice, Amount: decimal.NewFromInt(120)}}

	prices := &fakePricer{prices: map[string]decimal.Decimal{"Apple": decimal.NewFromInt(200)}}
	s := reportForTest(settings, ledger, lucky, users, newFakeNutrition(), prices)

	// No one has observed the close yet; the report alone must resolve it.
	snap, err := s.Snapshot(context.Background(), now)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	byName := map[string]ItemReport{}
	for _, it := range snap.Items {
		byName[it.Name] = it
	}
	// 200 * (1 - 20/100)
	if !byName["Apple"].BillingRate.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("want settled rate 160, got %s", byName["Apple"].BillingRate)
	}
	if byName["Apple"].LuckyWinner != testMobile+" 120 INR" {
		t.Fatalf("winner not drawn for report: %q", byName["Apple"].LuckyWinner)
	}
	if settings.m[SettingBillingDone] != settings.m[SettingBidStart] {
		t.Fatal("billing marker not recorded by report observation")
	}
}

func TestSnapshot_OpenCycleLeftUnresolved(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	settings := openCycle(t, now.Add(-time.Hour))

	catalog := twoItemCatalog()
	ledger := &fakeBids{catalog: catalog}
	s := reportForTest(settings, ledger, newFakeLucky(), newFakeUsers(), newFakeNutrition(), &fakePricer{})

	snap, err := s.Snapshot(context.Background(), now)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !snap.Cycle.Open {
		t.Fatal("cycle should be open")
	}
	if _, ok := settings.m[SettingBillingDone]; ok {
		t.Fatal("open cycle must not be settled by a report")
	}
}
