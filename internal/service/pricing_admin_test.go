package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
)

func TestDiscountAdminServiceCreateWithCodes(t *testing.T) {
	f := setupPricingTest(t)
	svc := NewDiscountAdminService(f.discountRepo, f.redemptionRepo)

	discount, err := svc.Create(SaveDiscountInput{
		Name:        "Spring sale",
		Type:        " Percent ",
		Value:       models.NewMoneyFromInt(15),
		ProductIDs:  []uint{3, 3, 0, 4},
		Codes:       []string{"Spring15", " ", "spring-vip"},
		MinSubtotal: models.NewNullMoney(1000),
	})
	if err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	if discount.Type != constants.DiscountTypePercent || !discount.IsActive {
		t.Fatalf("unexpected discount: %+v", discount)
	}
	if len(discount.Codes) != 2 || discount.Codes[0].NormalizedCode != "spring15" {
		t.Fatalf("unexpected codes: %+v", discount.Codes)
	}
	if got := discount.Eligibility.ProductIDs; len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Fatalf("eligibility ids should be deduplicated: %v", got)
	}

	loaded, err := svc.Get(discount.ID)
	if err != nil {
		t.Fatalf("get discount failed: %v", err)
	}
	if minSubtotal, ok := loaded.MinSubtotal.Get(); !ok || !minSubtotal.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("min_subtotal not persisted: %+v", loaded.MinSubtotal)
	}
	if loaded.Eligibility.Kind() != constants.EligibilityProduct {
		t.Fatalf("eligibility not persisted: %+v", loaded.Eligibility)
	}

	if _, err := svc.AddCode(discount.ID, "SPRING15"); !errors.Is(err, ErrDiscountCodeExists) {
		t.Fatalf("want ErrDiscountCodeExists got %v", err)
	}
	if _, err := svc.Create(SaveDiscountInput{Name: "Broken", Type: "bogo", Value: models.NewMoneyFromInt(1)}); !errors.Is(err, models.ErrInvalidDiscountType) {
		t.Fatalf("want ErrInvalidDiscountType got %v", err)
	}
	if _, err := svc.Create(SaveDiscountInput{Name: "Too much", Type: constants.DiscountTypePercent, Value: models.NewMoneyFromInt(120)}); !errors.Is(err, models.ErrInvalidDiscountValue) {
		t.Fatalf("want ErrInvalidDiscountValue got %v", err)
	}
}

func TestDiscountAdminServiceUpdateKeepsCartSnapshot(t *testing.T) {
	f := setupPricingTest(t)
	svc := NewDiscountAdminService(f.discountRepo, f.redemptionRepo)
	owner := CartOwner{UserID: 1}
	product := f.seedProduct(t, 0, "tea", 1000)
	discount, err := svc.Create(SaveDiscountInput{Name: "Fixed", Type: constants.DiscountTypeFixed, Value: models.NewMoneyFromInt(100), Codes: []string{"FIX"}})
	if err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	cart := f.newCart(t, owner)
	f.addItem(t, owner, cart.ID, product.ID, 1)
	if _, err := f.carts.ApplyCode(owner, cart.ID, "fix"); err != nil {
		t.Fatalf("apply code failed: %v", err)
	}

	if _, err := svc.Update(discount.ID, SaveDiscountInput{Name: "Fixed", Type: constants.DiscountTypeFixed, Value: models.NewMoneyFromInt(250)}); err != nil {
		t.Fatalf("update discount failed: %v", err)
	}
	stored, err := f.carts.Get(owner, cart.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if !stored.CouponSnapshot.DiscountValue.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("stored snapshot must not follow later edits: %s", stored.CouponSnapshot.DiscountValue.String())
	}
	if _, err := svc.Update(9999, SaveDiscountInput{Name: "x", Type: constants.DiscountTypeFixed, Value: models.NewMoneyFromInt(1)}); !errors.Is(err, ErrDiscountNotFound) {
		t.Fatalf("want ErrDiscountNotFound got %v", err)
	}
}

func TestDiscountAdminServiceRecordRedemptionFeedsLimits(t *testing.T) {
	f := setupPricingTest(t)
	svc := NewDiscountAdminService(f.discountRepo, f.redemptionRepo)
	once := 1
	product := f.seedProduct(t, 0, "tea", 1000)
	if _, err := svc.Create(SaveDiscountInput{
		Name:             "Once",
		Type:             constants.DiscountTypeFixed,
		Value:            models.NewMoneyFromInt(100),
		PerCustomerLimit: &once,
		Codes:            []string{"ONCE"},
	}); err != nil {
		t.Fatalf("create discount failed: %v", err)
	}

	if _, err := svc.RecordRedemption(RecordRedemptionInput{Code: "once"}); !errors.Is(err, models.ErrCartOwnerInvalid) {
		t.Fatalf("want ErrCartOwnerInvalid got %v", err)
	}
	if _, err := svc.RecordRedemption(RecordRedemptionInput{Code: "missing", GuestToken: "g"}); !errors.Is(err, ErrDiscountCodeNotFound) {
		t.Fatalf("want ErrDiscountCodeNotFound got %v", err)
	}
	redemption, err := svc.RecordRedemption(RecordRedemptionInput{Code: " ONCE ", GuestToken: "guest-r", OrderRef: "ORD-1", Amount: models.NewMoneyFromInt(100)})
	if err != nil {
		t.Fatalf("record redemption failed: %v", err)
	}
	if redemption.GuestToken == nil || *redemption.GuestToken != "guest-r" || redemption.UserID != nil {
		t.Fatalf("unexpected redemption owner: %+v", redemption)
	}

	result := f.discounts.Resolve(NewPricingContext(CartOwner{GuestToken: "guest-r"}, f.now), discountInputFor("once", 0, discountLine(product.ID, 1, 1000)))
	if result.RejectReason != constants.DiscountRejectPerCustomerLimit {
		t.Fatalf("recorded redemption should count towards the limit, got %q", result.RejectReason)
	}

	rows, total, err := svc.ListRedemptions(repository.RedemptionListFilter{OrderRef: "ORD-1", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list redemptions failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("want 1 redemption got %d", total)
	}
}

func TestPricingConfigServiceShippingLifecycle(t *testing.T) {
	f := setupPricingTest(t)
	quotes := NewQuoteService(&config.Config{}, f.taxes, f.shipping)
	svc := NewPricingConfigService(f.taxRepo, f.shippingRepo, quotes)
	ctx := context.Background()

	zone, err := svc.CreateZone(ctx, &models.ShippingZone{Name: "Pakistan", Countries: models.StringArray{"PK"}, IsActive: true})
	if err != nil {
		t.Fatalf("create zone failed: %v", err)
	}
	if _, err := svc.CreateMethod(ctx, &models.ShippingMethod{Name: "Ghost", ZoneID: uintPtr(999)}); !errors.Is(err, ErrShippingZoneNotFound) {
		t.Fatalf("want ErrShippingZoneNotFound got %v", err)
	}
	method, err := svc.CreateMethod(ctx, &models.ShippingMethod{Name: "Tiered", ZoneID: &zone.ID, IsActive: true})
	if err != nil {
		t.Fatalf("create method failed: %v", err)
	}
	if _, err := svc.CreateRate(ctx, &models.ShippingRate{MethodID: method.ID, MinSubtotal: models.NewNullMoney(500), MaxSubtotal: models.NewNullMoney(100)}); !errors.Is(err, models.ErrInvalidSubtotalRange) {
		t.Fatalf("want ErrInvalidSubtotalRange got %v", err)
	}
	if _, err := svc.CreateRate(ctx, &models.ShippingRate{MethodID: method.ID, MaxSubtotal: models.NewNullMoney(2000), Rate: models.NewMoneyFromInt(150), IsActive: true}); err != nil {
		t.Fatalf("create rate failed: %v", err)
	}

	options, err := quotes.ShippingQuote(ctx, models.Address{Country: "pk"}, models.NewMoneyFromInt(1500))
	if err != nil {
		t.Fatalf("shipping quote failed: %v", err)
	}
	if len(options) != 1 {
		t.Fatalf("want 1 option got %d", len(options))
	}
	mustMoney(t, options[0].Amount, 150, "tier amount")
	options, err = quotes.ShippingQuote(ctx, models.Address{Country: "PK"}, models.NewMoneyFromInt(2500))
	if err != nil {
		t.Fatalf("shipping quote failed: %v", err)
	}
	if len(options) != 0 {
		t.Fatalf("method without matching tier must be excluded: %+v", options)
	}

	if err := svc.DeleteZone(ctx, zone.ID); !errors.Is(err, ErrShippingZoneInUse) {
		t.Fatalf("want ErrShippingZoneInUse got %v", err)
	}
	if err := svc.DeleteMethod(ctx, method.ID); err != nil {
		t.Fatalf("delete method failed: %v", err)
	}
	if err := svc.DeleteZone(ctx, zone.ID); err != nil {
		t.Fatalf("delete zone failed: %v", err)
	}
}

func TestPricingConfigServiceTaxProfiles(t *testing.T) {
	f := setupPricingTest(t)
	quotes := NewQuoteService(&config.Config{}, f.taxes, f.shipping)
	svc := NewPricingConfigService(f.taxRepo, f.shippingRepo, quotes)
	ctx := context.Background()

	if _, err := svc.CreateTaxProfile(ctx, &models.TaxProfile{Name: "Bad", CountryCode: "PK", Rate: decimal.NewFromInt(101)}); !errors.Is(err, models.ErrInvalidTaxRate) {
		t.Fatalf("want ErrInvalidTaxRate got %v", err)
	}
	profile, err := svc.CreateTaxProfile(ctx, &models.TaxProfile{Name: "GST", CountryCode: " pk ", Rate: decimal.NewFromInt(17), IsActive: true})
	if err != nil {
		t.Fatalf("create tax profile failed: %v", err)
	}
	if profile.CountryCode != "PK" {
		t.Fatalf("country code should be normalised, got %q", profile.CountryCode)
	}

	breakdown, err := quotes.TaxQuote(ctx, models.NewMoneyFromInt(1000), models.Address{Country: "PK"})
	if err != nil {
		t.Fatalf("tax quote failed: %v", err)
	}
	mustMoney(t, breakdown.Additive, 170, "additive")

	profile.Rate = decimal.NewFromInt(18)
	if _, err := svc.UpdateTaxProfile(ctx, profile.ID, profile); err != nil {
		t.Fatalf("update tax profile failed: %v", err)
	}
	breakdown, err = quotes.TaxQuote(ctx, models.NewMoneyFromInt(1000), models.Address{Country: "PK"})
	if err != nil {
		t.Fatalf("tax quote failed: %v", err)
	}
	mustMoney(t, breakdown.Additive, 180, "additive after update")

	if err := svc.DeleteTaxProfile(ctx, profile.ID); err != nil {
		t.Fatalf("delete tax profile failed: %v", err)
	}
	if err := svc.DeleteTaxProfile(ctx, profile.ID); !errors.Is(err, ErrTaxProfileNotFound) {
		t.Fatalf("want ErrTaxProfileNotFound got %v", err)
	}
}
