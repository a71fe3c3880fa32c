package service

import (
	"errors"
	"testing"

	"github.com/storefront-next/internal/models"
)

func uintPtr(v uint) *uint {
	return &v
}

func TestQuoteShippingFreeOverOverridesFlatRate(t *testing.T) {
	methods := []models.ShippingMethod{{
		ID:       1,
		Name:     "Standard",
		FlatRate: models.NewNullMoney(250),
		FreeOver: models.NewNullMoney(5000),
		IsActive: true,
	}}
	quotes := quoteShipping(nil, methods, models.Address{Country: "PK"}, models.NewMoneyFromInt(6000))
	if len(quotes) != 1 {
		t.Fatalf("want 1 quote got %d", len(quotes))
	}
	mustMoney(t, quotes[0].Amount, 0, "amount")
	if !quotes[0].FreeShipping {
		t.Fatalf("quote should be marked free")
	}

	quotes = quoteShipping(nil, methods, models.Address{Country: "PK"}, models.NewMoneyFromInt(4999))
	mustMoney(t, quotes[0].Amount, 250, "amount below threshold")
}

func TestQuoteShippingExcludesUnquotableMethod(t *testing.T) {
	methods := []models.ShippingMethod{
		{
			ID:       1,
			Name:     "Tiered only",
			FreeOver: models.NewNullMoney(10000),
			IsActive: true,
			Rates: []models.ShippingRate{
				{ID: 10, MethodID: 1, MinSubtotal: models.NewNullMoney(5000), Rate: models.NewMoneyFromInt(100), IsActive: true},
			},
		},
		{ID: 2, Name: "Flat", FlatRate: models.NewNullMoney(300), IsActive: true},
	}
	quotes := quoteShipping(nil, methods, models.Address{Country: "PK"}, models.NewMoneyFromInt(1000))
	if len(quotes) != 1 || quotes[0].MethodID != 2 {
		t.Fatalf("tiered method without matching tier must be excluded: %+v", quotes)
	}

	quotes = quoteShipping(nil, methods, models.Address{Country: "PK"}, models.NewMoneyFromInt(6000))
	if len(quotes) != 2 || quotes[0].MethodID != 1 {
		t.Fatalf("tier match should quote and sort first: %+v", quotes)
	}
	mustMoney(t, quotes[0].Amount, 100, "tier amount")
	if quotes[0].RateID == nil || *quotes[0].RateID != 10 {
		t.Fatalf("quote should reference tier 10")
	}
}

func TestQuoteShippingTierBeatsFlatRate(t *testing.T) {
	methods := []models.ShippingMethod{{
		ID:       1,
		Name:     "Courier",
		FlatRate: models.NewNullMoney(500),
		IsActive: true,
		Rates: []models.ShippingRate{
			{ID: 1, MethodID: 1, MaxSubtotal: models.NewNullMoney(999), Rate: models.NewMoneyFromInt(400), IsActive: false},
			{ID: 2, MethodID: 1, MaxSubtotal: models.NewNullMoney(1999), Rate: models.NewMoneyFromInt(350), IsActive: true},
			{ID: 3, MethodID: 1, MaxSubtotal: models.NewNullMoney(2999), Rate: models.NewMoneyFromInt(200), IsActive: true},
		},
	}}
	cases := []struct {
		subtotal int64
		want     int64
	}{
		{500, 350},
		{1999, 350},
		{2000, 200},
		{3000, 500},
	}
	for _, tc := range cases {
		quotes := quoteShipping(nil, methods, models.Address{Country: "PK"}, models.NewMoneyFromInt(tc.subtotal))
		if len(quotes) != 1 {
			t.Fatalf("subtotal %d: want 1 quote got %d", tc.subtotal, len(quotes))
		}
		mustMoney(t, quotes[0].Amount, tc.want, "tier amount")
	}
}

func TestQuoteShippingZoneMatchingAndOrdering(t *testing.T) {
	zones := []models.ShippingZone{
		{ID: 1, Name: "Pakistan", Countries: models.StringArray{"pk"}, IsActive: true},
		{ID: 2, Name: "Karachi metro", Countries: models.StringArray{"PK"}, Cities: models.StringArray{"karachi"}, IsActive: true},
		{ID: 3, Name: "Punjab", Countries: models.StringArray{"PK"}, States: models.StringArray{"PB"}, IsActive: true},
		{ID: 4, Name: "Disabled", IsActive: false},
	}
	methods := []models.ShippingMethod{
		{ID: 1, Name: "Global", FlatRate: models.NewNullMoney(900), IsActive: true},
		{ID: 2, ZoneID: uintPtr(1), Name: "Domestic", FlatRate: models.NewNullMoney(300), SortOrder: 5, IsActive: true},
		{ID: 3, ZoneID: uintPtr(2), Name: "Same day", FlatRate: models.NewNullMoney(300), SortOrder: 1, IsActive: true},
		{ID: 4, ZoneID: uintPtr(3), Name: "Punjab courier", FlatRate: models.NewNullMoney(100), IsActive: true},
		{ID: 5, ZoneID: uintPtr(4), Name: "Dead zone", FlatRate: models.NewNullMoney(1), IsActive: true},
		{ID: 6, Name: "Inactive", FlatRate: models.NewNullMoney(1), IsActive: false},
	}

	quotes := quoteShipping(zones, methods, models.Address{Country: "PK", State: "SD", City: "North Karachi"}, models.NewMoneyFromInt(1000))
	got := make([]uint, 0, len(quotes))
	for _, quote := range quotes {
		got = append(got, quote.MethodID)
	}
	want := []uint{3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("want methods %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want methods %v got %v", want, got)
		}
	}

	quotes = quoteShipping(zones, methods, models.Address{Country: "AE", City: "Dubai"}, models.NewMoneyFromInt(1000))
	if len(quotes) != 1 || quotes[0].MethodID != 1 {
		t.Fatalf("foreign address should only see global method: %+v", quotes)
	}
}

func TestShippingResolverValidateMethodSharesQuotePath(t *testing.T) {
	f := setupPricingTest(t)
	zone := &models.ShippingZone{Name: "Pakistan", Countries: models.StringArray{"PK"}, IsActive: true}
	if err := f.shippingRepo.CreateZone(zone); err != nil {
		t.Fatalf("create zone failed: %v", err)
	}
	domestic := f.seedMethod(t, &models.ShippingMethod{ZoneID: &zone.ID, Name: "Domestic", FlatRate: models.NewNullMoney(250), FreeOver: models.NewNullMoney(5000)})

	quote, err := f.shipping.ValidateMethod(models.Address{Country: "PK"}, models.NewMoneyFromInt(6000), domestic.ID)
	if err != nil {
		t.Fatalf("validate method failed: %v", err)
	}
	mustMoney(t, quote.Amount, 0, "free amount")

	if _, err := f.shipping.ValidateMethod(models.Address{Country: "IN"}, models.NewMoneyFromInt(6000), domestic.ID); !errors.Is(err, ErrShippingMethodUnavailable) {
		t.Fatalf("want ErrShippingMethodUnavailable got %v", err)
	}
	if _, err := f.shipping.ValidateMethod(models.Address{Country: "PK"}, models.NewMoneyFromInt(6000), 999); !errors.Is(err, ErrShippingMethodNotFound) {
		t.Fatalf("want ErrShippingMethodNotFound got %v", err)
	}
}
