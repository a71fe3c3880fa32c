package service

import (
	"testing"
	"time"

	"github.com/storefront-next/internal/models"
)

func TestCleanupStaleGuestCartsInBatches(t *testing.T) {
	f := setupPricingTest(t)
	now := time.Now()
	old := now.Add(-45 * 24 * time.Hour)
	for _, token := range []string{"stale-1", "stale-2", "stale-3"} {
		if err := f.cartRepo.Create(models.NewGuestCart(token, "PKR", old)); err != nil {
			t.Fatalf("create stale cart failed: %v", err)
		}
	}
	fresh := models.NewGuestCart("fresh", "PKR", now)
	if err := f.cartRepo.Create(fresh); err != nil {
		t.Fatalf("create fresh cart failed: %v", err)
	}
	userCart := models.NewUserCart(9, "PKR", old)
	if err := f.cartRepo.Create(userCart); err != nil {
		t.Fatalf("create user cart failed: %v", err)
	}

	removed, err := f.carts.CleanupStaleGuestCarts(GuestCartCutoff(now, 30), 2)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed want 3 got %d", removed)
	}
	if cart, _ := f.cartRepo.FindActiveByGuestToken("fresh"); cart == nil {
		t.Fatalf("fresh guest cart must survive")
	}
	if cart, _ := f.cartRepo.FindActiveByUser(9); cart == nil {
		t.Fatalf("user carts are never cleaned")
	}

	removed, err = f.carts.CleanupStaleGuestCarts(GuestCartCutoff(now, 30), 2)
	if err != nil {
		t.Fatalf("second cleanup failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("second cleanup should be a no-op, removed %d", removed)
	}
}

func TestGuestCartCutoffDefaultsTTL(t *testing.T) {
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	if got := GuestCartCutoff(now, 0); !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected cutoff %s", got)
	}
}
