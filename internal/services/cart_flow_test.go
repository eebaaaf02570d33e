package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"vitashelf/internal/repos"
	"vitashelf/internal/services"
)

func newCartSvc(t *testing.T) (*services.CartSessionService, *repos.OrderRepo, *repos.UserRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	store := repos.NewCartStore(db)
	prods := repos.NewProductRepo(db)
	svc := services.NewCartSessionService(store, prods, services.DefaultPolicy())
	return svc, repos.NewOrderRepo(db), repos.NewUserRepo(db)
}

func TestCartSessionPersistsAcrossLoads(t *testing.T) {
	svc, _, _ := newCartSvc(t)
	ctx := context.Background()
	sid := "sess-1"

	if _, err := svc.Add(ctx, sid, "", "mag-400", "", 2, false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Add(ctx, sid, "", "whey-1kg", "chocolate", 1, false); err != nil {
		t.Fatal(err)
	}

	// a fresh view goes back through the store
	cv, err := svc.View(ctx, sid, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 2 || cv.ItemCount != 3 {
		t.Fatalf("persisted cart mismatch: lines=%d items=%d", len(cv.Lines), cv.ItemCount)
	}
	// 2*12.50 + 1*31.90
	want := decimal.RequireFromString("56.90")
	if !cv.Subtotal.Equal(want) {
		t.Fatalf("want subtotal 56.90, got %s", cv.Subtotal)
	}
	// 56.90 is over the 49.00 threshold, so shipping is free
	if !cv.Shipping.Equal(decimal.Zero) {
		t.Fatalf("subtotal over threshold must ship free, got %s", cv.Shipping)
	}
	if !cv.Total.Equal(want) {
		t.Fatalf("want total 56.90, got %s", cv.Total)
	}
}

func TestCartSessionShippingBelowThreshold(t *testing.T) {
	svc, _, _ := newCartSvc(t)
	ctx := context.Background()
	sid := "sess-2"

	cv, err := svc.Add(ctx, sid, "", "d3-2000", "", 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if !cv.Shipping.Equal(decimal.RequireFromString("4.95")) {
		t.Fatalf("want shipping 4.95 below threshold, got %s", cv.Shipping)
	}
	if !cv.Total.Equal(decimal.RequireFromString("11.45")) {
		t.Fatalf("want total 11.45, got %s", cv.Total)
	}

	// an empty cart ships nothing
	empty, err := svc.View(ctx, "sess-empty", "")
	if err != nil {
		t.Fatal(err)
	}
	if !empty.Shipping.Equal(decimal.Zero) {
		t.Fatalf("empty cart must not charge shipping, got %s", empty.Shipping)
	}
}

func TestCartSessionUnknownVariantFails(t *testing.T) {
	svc, _, _ := newCartSvc(t)
	if _, err := svc.Add(context.Background(), "sess-3", "", "mag-400", "no-such-variant", 1, false); err == nil {
		t.Fatal("unknown variant must fail the add")
	}
}

func TestCartSessionIdentityLifecycle(t *testing.T) {
	svc, _, _ := newCartSvc(t)
	ctx := context.Background()
	sid := "sess-4"

	if _, err := svc.Add(ctx, sid, "", "zinc-50", "", 2, false); err != nil {
		t.Fatal(err)
	}

	// first association keeps the guest cart
	cv, err := svc.View(ctx, sid, "u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 || cv.Identity != "u-alice" {
		t.Fatalf("first association: %+v identity=%q", cv.Lines, cv.Identity)
	}

	// a different user on the same session starts clean
	cv, err = svc.View(ctx, sid, "u-bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 0 || cv.Identity != "u-bob" {
		t.Fatalf("switch: %+v identity=%q", cv.Lines, cv.Identity)
	}

	// adds under the new identity are identity-synced too
	if _, err := svc.Add(ctx, sid, "u-bob", "zinc-50", "", 1, false); err != nil {
		t.Fatal(err)
	}
	cv, _ = svc.View(ctx, sid, "u-bob")
	if len(cv.Lines) != 1 || cv.Lines[0].Qty != 1 {
		t.Fatalf("add after switch: %+v", cv.Lines)
	}

	// logout is not a switch: a guest view keeps the cart and its identity
	cv, err = svc.View(ctx, sid, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 || cv.Identity != "u-bob" {
		t.Fatalf("logout must not reset the cart: %+v identity=%q", cv.Lines, cv.Identity)
	}
}

func TestCartSessionClearDropsSnapshot(t *testing.T) {
	svc, _, _ := newCartSvc(t)
	ctx := context.Background()
	sid := "sess-5"

	if _, err := svc.Add(ctx, sid, "u-alice", "mag-400", "", 1, false); err != nil {
		t.Fatal(err)
	}
	if err := svc.Clear(ctx, sid); err != nil {
		t.Fatal(err)
	}
	cv, err := svc.View(ctx, sid, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 0 || cv.Identity != "" {
		t.Fatalf("clear must reset everything: %+v identity=%q", cv.Lines, cv.Identity)
	}
}

func TestCartSessionPanelSuppression(t *testing.T) {
	svc, _, _ := newCartSvc(t)
	ctx := context.Background()

	cv, err := svc.Add(ctx, "sess-6", "", "d3-2000", "", 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if cv.PanelOpen {
		t.Fatal("suppressed add must not open the panel")
	}
	if cv.LastAdded == nil || cv.LastAdded.Product.ID != "d3-2000" {
		t.Fatalf("suppressed add must still record the line: %+v", cv.LastAdded)
	}

	cv, err = svc.Add(ctx, "sess-6", "", "d3-2000", "", 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if !cv.PanelOpen {
		t.Fatal("default add must open the panel")
	}
	if cv.LastAdded.Qty != 2 {
		t.Fatalf("last added must reflect the merged quantity, got %d", cv.LastAdded.Qty)
	}
}
