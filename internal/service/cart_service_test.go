package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

func TestCartServiceGetOrCreateReusesActiveCart(t *testing.T) {
	f := setupPricingTest(t)
	owner := CartOwner{GuestToken: NewGuestToken()}
	if strings.Contains(owner.GuestToken, "-") || len(owner.GuestToken) != 32 {
		t.Fatalf("unexpected guest token format: %s", owner.GuestToken)
	}
	first := f.newCart(t, owner)
	second, created, err := f.carts.GetOrCreate(owner)
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatalf("expected existing cart %d, got %d (created=%v)", first.ID, second.ID, created)
	}
	if second.Currency != constants.DefaultCurrency {
		t.Fatalf("unexpected currency %s", second.Currency)
	}
	if _, _, err := f.carts.GetOrCreate(CartOwner{}); !errors.Is(err, ErrGuestTokenRequired) {
		t.Fatalf("want ErrGuestTokenRequired got %v", err)
	}
}

func TestCartServiceOwnershipChecks(t *testing.T) {
	f := setupPricingTest(t)
	owner := CartOwner{UserID: 1}
	product := f.seedProduct(t, 0, "tea", 100)
	cart := f.newCart(t, owner)

	if _, err := f.carts.Get(CartOwner{UserID: 2}, cart.ID); !errors.Is(err, ErrCartForbidden) {
		t.Fatalf("want ErrCartForbidden got %v", err)
	}
	if _, err := f.carts.AddItem(CartOwner{GuestToken: "intruder"}, cart.ID, AddCartItemInput{ProductID: product.ID, Quantity: 1}); !errors.Is(err, ErrCartForbidden) {
		t.Fatalf("want ErrCartForbidden got %v", err)
	}
	if _, err := f.carts.Get(owner, 4040); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("want ErrCartNotFound got %v", err)
	}
}

func TestCartServiceAddItemPricing(t *testing.T) {
	f := setupPricingTest(t)
	owner := CartOwner{UserID: 1}
	product := f.seedProduct(t, 0, "shirt", 1200)
	variant := &models.ProductVariant{ProductID: product.ID, SKU: "shirt-xl", PriceAmount: models.NewNullMoney(1500), InStock: true, IsActive: true}
	if err := f.catalogRepo.CreateVariant(variant); err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	plainVariant := &models.ProductVariant{ProductID: product.ID, SKU: "shirt-s", InStock: true, IsActive: true}
	if err := f.catalogRepo.CreateVariant(plainVariant); err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	cart := f.newCart(t, owner)

	if _, err := f.carts.AddItem(owner, cart.ID, AddCartItemInput{ProductID: product.ID, VariantID: &variant.ID, Quantity: 1}); err != nil {
		t.Fatalf("add variant failed: %v", err)
	}
	if _, err := f.carts.AddItem(owner, cart.ID, AddCartItemInput{ProductID: product.ID, VariantID: &plainVariant.ID, Quantity: 1}); err != nil {
		t.Fatalf("add plain variant failed: %v", err)
	}
	priced, err := f.carts.AddItem(owner, cart.ID, AddCartItemInput{ProductID: product.ID, VariantID: &variant.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add variant again failed: %v", err)
	}
	if len(priced.Items) != 2 {
		t.Fatalf("same (product, variant) must merge into one line, got %d lines", len(priced.Items))
	}
	mustMoney(t, priced.Subtotal, 3*1500+1200, "subtotal")
	assertTotalInvariant(t, priced)

	if _, err := f.carts.AddItem(owner, cart.ID, AddCartItemInput{ProductID: product.ID, Quantity: 0}); !errors.Is(err, ErrInvalidCartItem) {
		t.Fatalf("want ErrInvalidCartItem got %v", err)
	}
	if _, err := f.carts.AddItem(owner, cart.ID, AddCartItemInput{ProductID: 999, Quantity: 1}); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("want ErrProductNotAvailable got %v", err)
	}
}

func TestCartServiceAddItemOutOfStock(t *testing.T) {
	f := setupPricingTest(t)
	owner := CartOwner{UserID: 1}
	product := f.seedProduct(t, 0, "rare", 100)
	if err := f.db.Model(&models.Product{}).Where("id = ?", product.ID).Update("in_stock", false).Error; err != nil {
		t.Fatalf("mark out of stock failed: %v", err)
	}
	cart := f.newCart(t, owner)
	if _, err := f.carts.AddItem(owner, cart.ID, AddCartItemInput{ProductID: product.ID, Quantity: 1}); !errors.Is(err, ErrProductOutOfStock) {
		t.Fatalf("want ErrProductOutOfStock got %v", err)
	}
}

func TestCartServiceUpdateItemZeroQuantityDeletesLine(t *testing.T) {
	f := setupPricingTest(t)
	owner := CartOwner{UserID: 1}
	tea := f.seedProduct(t, 0, "tea", 100)
	cup := f.seedProduct(t, 0, "cup", 250)
	cart := f.newCart(t, owner)
	f.addItem(t, owner, cart.ID, tea.ID, 2)
	priced := f.addItem(t, owner, cart.ID, cup.ID, 1)

	var teaLine uint
	for _, item := range priced.Items {
		if item.ProductID == tea.ID {
			teaLine = item.ID
		}
	}
	updated, err := f.carts.UpdateItem(owner, cart.ID, teaLine, 0)
	if err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	if len(updated.Items) != 1 || updated.Items[0].ProductID != cup.ID {
		t.Fatalf("zero quantity should delete the line: %+v", updated.Items)
	}
	mustMoney(t, updated.Subtotal, 250, "subtotal")

	if _, err := f.carts.UpdateItem(owner, cart.ID, teaLine, 3); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("want ErrCartItemNotFound got %v", err)
	}
	removed, err := f.carts.RemoveItem(owner, cart.ID, updated.Items[0].ID)
	if err != nil {
		t.Fatalf("remove item failed: %v", err)
	}
	mustMoney(t, removed.Total, 0, "total")
}

func TestCartServiceApplyCodeRejectionRollsBack(t *testing.T) {
	f := setupPricingTest(t)
	owner := CartOwner{UserID: 1}
	toys := f.seedCategory(t, "toys")
	books := f.seedCategory(t, "books")
	book := f.seedProduct(t, books.ID, "novel", 2000)
	f.seedDiscount(t, constants.DiscountTypeFixed, 200, "GOOD", nil)
	f.seedDiscount(t, constants.DiscountTypePercent, 50, "TOYSONLY", func(d *models.Discount) {
		d.Eligibility = models.DiscountEligibility{CategoryIDs: []uint{toys.ID}}
	})

	cart := f.newCart(t, owner)
	f.addItem(t, owner, cart.ID, book.ID, 1)
	if _, err := f.carts.ApplyCode(owner, cart.ID, "good"); err != nil {
		t.Fatalf("apply good code failed: %v", err)
	}

	_, err := f.carts.ApplyCode(owner, cart.ID, "toysonly")
	if !errors.Is(err, ErrDiscountCodeRejected) {
		t.Fatalf("want ErrDiscountCodeRejected got %v", err)
	}
	var rejection *DiscountRejection
	if !errors.As(err, &rejection) || rejection.Reason != constants.DiscountRejectNoEligibleItems {
		t.Fatalf("rejection should carry the reason: %v", err)
	}
	if _, err := f.carts.ApplyCode(owner, cart.ID, "nope"); !errors.Is(err, ErrDiscountCodeNotFound) {
		t.Fatalf("want ErrDiscountCodeNotFound got %v", err)
	}

	current, err := f.carts.Get(owner, cart.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if current.AppliedCode != "good" {
		t.Fatalf("previous code must survive a rejected apply, got %q", current.AppliedCode)
	}
	mustMoney(t, current.DiscountTotal, 200, "discount_total")

	cleared, err := f.carts.ClearCode(owner, cart.ID)
	if err != nil {
		t.Fatalf("clear code failed: %v", err)
	}
	if cleared.AppliedCode != "" || !cleared.CouponSnapshot.IsZero() {
		t.Fatalf("clear code should drop code and snapshot")
	}
	mustMoney(t, cleared.DiscountTotal, 0, "discount_total")
}

func seedDomesticShipping(t *testing.T, f *pricingFixture) (*models.ShippingMethod, *models.ShippingMethod) {
	t.Helper()
	zone := &models.ShippingZone{Name: "Pakistan", Countries: models.StringArray{"PK"}, IsActive: true}
	if err := f.shippingRepo.CreateZone(zone); err != nil {
		t.Fatalf("create zone failed: %v", err)
	}
	standard := f.seedMethod(t, &models.ShippingMethod{ZoneID: &zone.ID, Name: "Standard", FlatRate: models.NewNullMoney(250), FreeOver: models.NewNullMoney(5000)})
	express := f.seedMethod(t, &models.ShippingMethod{ZoneID: &zone.ID, Name: "Express", FlatRate: models.NewNullMoney(600), SortOrder: 1})
	return standard, express
}

func TestCartServiceShippingSelectionAndAddressChange(t *testing.T) {
	f := setupPricingTest(t)
	owner := CartOwner{GuestToken: "guest-ship"}
	standard, express := seedDomesticShipping(t, f)
	f.seedTaxProfile(t, "PK GST", "PK", 10, false, 1)
	product := f.seedProduct(t, 0, "kettle", 2000)
	cart := f.newCart(t, owner)
	f.addItem(t, owner, cart.ID, product.ID, 1)

	if _, err := f.carts.SelectShippingMethod(owner, cart.ID, standard.ID); !errors.Is(err, ErrShippingMethodUnavailable) {
		t.Fatalf("method must be unavailable without address, got %v", err)
	}
	if _, err := f.carts.SetAddress(owner, cart.ID, models.Address{}); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("want ErrInvalidAddress got %v", err)
	}
	if _, err := f.carts.SetAddress(owner, cart.ID, models.Address{Country: "PK", City: "Lahore"}); err != nil {
		t.Fatalf("set address failed: %v", err)
	}
	options, err := f.carts.ShippingOptions(owner, cart.ID)
	if err != nil {
		t.Fatalf("shipping options failed: %v", err)
	}
	if len(options) != 2 || options[0].MethodID != standard.ID || options[1].MethodID != express.ID {
		t.Fatalf("unexpected options: %+v", options)
	}

	priced, err := f.carts.SelectShippingMethod(owner, cart.ID, express.ID)
	if err != nil {
		t.Fatalf("select shipping failed: %v", err)
	}
	mustMoney(t, priced.ShippingTotal, 600, "shipping_total")
	mustMoney(t, priced.TaxTotal, 260, "tax_total")
	mustMoney(t, priced.Total, 2860, "total")
	assertTotalInvariant(t, priced)

	moved, err := f.carts.SetAddress(owner, cart.ID, models.Address{Country: "PK", City: "Karachi"})
	if err != nil {
		t.Fatalf("set address failed: %v", err)
	}
	if moved.ShippingMethodID != nil {
		t.Fatalf("address change must clear the selected method")
	}
	mustMoney(t, moved.ShippingTotal, 0, "shipping_total")
	mustMoney(t, moved.Total, 2200, "total")
}

func TestCartServiceCheckoutQuoteRevalidatesShipping(t *testing.T) {
	f := setupPricingTest(t)
	owner := CartOwner{UserID: 11}
	standard, express := seedDomesticShipping(t, f)
	product := f.seedProduct(t, 0, "chair", 3000)
	cart := f.newCart(t, owner)

	quote, err := f.carts.CheckoutQuote(owner, cart.ID)
	if err != nil {
		t.Fatalf("checkout quote failed: %v", err)
	}
	if quote.Ready || !containsString(quote.Issues, "cart_empty") || !containsString(quote.Issues, "address_missing") {
		t.Fatalf("empty cart should not be ready: %+v", quote.Issues)
	}

	added := f.addItem(t, owner, cart.ID, product.ID, 1)
	if _, err := f.carts.SetAddress(owner, cart.ID, models.Address{Country: "PK"}); err != nil {
		t.Fatalf("set address failed: %v", err)
	}
	if _, err := f.carts.SelectShippingMethod(owner, cart.ID, standard.ID); err != nil {
		t.Fatalf("select shipping failed: %v", err)
	}
	quote, err = f.carts.CheckoutQuote(owner, cart.ID)
	if err != nil {
		t.Fatalf("checkout quote failed: %v", err)
	}
	if !quote.Ready {
		t.Fatalf("cart should be ready: %+v", quote.Issues)
	}
	mustMoney(t, quote.Cart.ShippingTotal, 250, "shipping_total")

	// 数量增加后越过包邮门槛，运费应刷新为 0
	if _, err := f.carts.UpdateItem(owner, cart.ID, added.Items[0].ID, 2); err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	quote, err = f.carts.CheckoutQuote(owner, cart.ID)
	if err != nil {
		t.Fatalf("checkout quote failed: %v", err)
	}
	if quote.Shipping == nil || !quote.Shipping.FreeShipping {
		t.Fatalf("shipping should be free over threshold: %+v", quote.Shipping)
	}
	mustMoney(t, quote.Cart.ShippingTotal, 0, "shipping_total")
	mustMoney(t, quote.Cart.Total, 6000, "total")

	if _, err := f.carts.SelectShippingMethod(owner, cart.ID, express.ID); err != nil {
		t.Fatalf("select express failed: %v", err)
	}
	express.IsActive = false
	if err := f.shippingRepo.UpdateMethod(express); err != nil {
		t.Fatalf("deactivate express failed: %v", err)
	}
	quote, err = f.carts.CheckoutQuote(owner, cart.ID)
	if err != nil {
		t.Fatalf("checkout quote failed: %v", err)
	}
	if quote.Ready || !containsString(quote.Issues, "shipping_method_unavailable") {
		t.Fatalf("disabled method should invalidate the quote: %+v", quote.Issues)
	}
	if quote.Cart.ShippingMethodID != nil {
		t.Fatalf("invalid method should be cleared")
	}
	mustMoney(t, quote.Cart.ShippingTotal, 0, "shipping_total")
}
