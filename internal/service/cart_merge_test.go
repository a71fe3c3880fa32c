package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

func TestMergeGuestCartSumsMatchingLines(t *testing.T) {
	f := setupPricingTest(t)
	guest := CartOwner{GuestToken: "guest-merge"}
	user := CartOwner{UserID: 42}
	productX := f.seedProduct(t, 0, "product-x", 1000)
	productY := f.seedProduct(t, 0, "product-y", 400)

	guestCart := f.newCart(t, guest)
	f.addItem(t, guest, guestCart.ID, productX.ID, 2)
	if _, err := f.carts.AddItem(guest, guestCart.ID, AddCartItemInput{
		ProductID: productY.ID,
		Quantity:  1,
		Meta:      models.JSON{"gift_note": "hello"},
	}); err != nil {
		t.Fatalf("add guest item failed: %v", err)
	}
	userCart := f.newCart(t, user)
	f.addItem(t, user, userCart.ID, productX.ID, 1)

	merged, err := f.carts.MergeGuestCart(context.Background(), user.UserID, guest.GuestToken)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if merged.ID != userCart.ID {
		t.Fatalf("merge should return the user cart %d, got %d", userCart.ID, merged.ID)
	}
	quantities := map[uint]int{}
	for _, item := range merged.Items {
		quantities[item.ProductID] = item.Quantity
		if item.ProductID == productY.ID && item.Meta["gift_note"] != "hello" {
			t.Fatalf("copied line should keep its meta: %+v", item.Meta)
		}
	}
	if quantities[productX.ID] != 3 {
		t.Fatalf("product X quantity want 3 got %d", quantities[productX.ID])
	}
	if quantities[productY.ID] != 1 {
		t.Fatalf("product Y should be copied, got quantity %d", quantities[productY.ID])
	}
	mustMoney(t, merged.Subtotal, 3400, "subtotal")
	assertTotalInvariant(t, merged)

	stored, err := f.cartRepo.GetByID(guestCart.ID)
	if err != nil || stored == nil {
		t.Fatalf("load guest cart failed: %v", err)
	}
	if stored.Status != constants.CartStatusMerged {
		t.Fatalf("guest cart status want merged got %s", stored.Status)
	}
	if stored.MergedIntoID == nil || *stored.MergedIntoID != userCart.ID {
		t.Fatalf("guest cart should point at the user cart")
	}
	if len(stored.Items) != 0 {
		t.Fatalf("guest items should be deleted, %d left", len(stored.Items))
	}

	again, err := f.carts.MergeGuestCart(context.Background(), user.UserID, guest.GuestToken)
	if err != nil {
		t.Fatalf("second merge failed: %v", err)
	}
	if again.ID != userCart.ID || again.Subtotal.String() != merged.Subtotal.String() {
		t.Fatalf("re-merging a merged guest cart must be a no-op")
	}
	if _, err := f.carts.AddItem(guest, guestCart.ID, AddCartItemInput{ProductID: productX.ID, Quantity: 1}); !errors.Is(err, ErrCartInactive) {
		t.Fatalf("merged guest cart must stay inactive, got %v", err)
	}
}

func TestMergeGuestCartCreatesUserCartAndInheritsState(t *testing.T) {
	f := setupPricingTest(t)
	guest := CartOwner{GuestToken: "guest-inherit"}
	product := f.seedProduct(t, 0, "lamp", 3000)
	f.seedDiscount(t, constants.DiscountTypePercent, 10, "WELCOME", nil)
	f.seedTaxProfile(t, "PK GST", "PK", 5, false, 1)

	guestCart := f.newCart(t, guest)
	f.addItem(t, guest, guestCart.ID, product.ID, 1)
	if _, err := f.carts.SetAddress(guest, guestCart.ID, models.Address{Country: "PK", City: "Lahore"}); err != nil {
		t.Fatalf("set address failed: %v", err)
	}
	if _, err := f.carts.ApplyCode(guest, guestCart.ID, "welcome"); err != nil {
		t.Fatalf("apply code failed: %v", err)
	}

	merged, err := f.carts.MergeGuestCart(context.Background(), 77, guest.GuestToken)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if merged.UserID == nil || *merged.UserID != 77 {
		t.Fatalf("merge should create a cart for user 77")
	}
	if merged.AppliedCode != "welcome" || merged.ShipTo.Country != "PK" {
		t.Fatalf("user cart should inherit code and address: code=%q country=%q", merged.AppliedCode, merged.ShipTo.Country)
	}
	mustMoney(t, merged.DiscountTotal, 300, "discount_total")
	mustMoney(t, merged.TaxTotal, 135, "tax_total")
	assertTotalInvariant(t, merged)
}

func TestMergeGuestCartWithoutGuestCart(t *testing.T) {
	f := setupPricingTest(t)
	user := CartOwner{UserID: 5}
	userCart := f.newCart(t, user)

	result, err := f.carts.MergeGuestCart(context.Background(), user.UserID, "unknown-token")
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if result.ID != userCart.ID {
		t.Fatalf("missing guest cart should return the user cart")
	}
	if _, err := f.carts.MergeGuestCart(context.Background(), user.UserID, " "); !errors.Is(err, ErrGuestTokenRequired) {
		t.Fatalf("want ErrGuestTokenRequired got %v", err)
	}
	if _, err := f.carts.MergeGuestCart(context.Background(), 0, "token"); !errors.Is(err, ErrCartForbidden) {
		t.Fatalf("want ErrCartForbidden got %v", err)
	}
}
