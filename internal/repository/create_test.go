package repository

import (
	"testing"

	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestCreateKeepsExplicitInactiveFlag(t *testing.T) {
	db := openRepositoryTestDB(t)
	taxRepo := NewTaxProfileRepository(db)
	shippingRepo := NewShippingRepository(db)

	profile := &models.TaxProfile{Name: "Draft GST", CountryCode: "PK", Rate: decimal.NewFromInt(17), IsActive: false}
	if err := taxRepo.Create(profile); err != nil {
		t.Fatalf("create tax profile failed: %v", err)
	}
	loaded, err := taxRepo.GetByID(profile.ID)
	if err != nil || loaded == nil {
		t.Fatalf("get tax profile failed: %v", err)
	}
	if loaded.IsActive || profile.IsActive {
		t.Fatalf("inactive tax profile must stay inactive")
	}
	active, err := taxRepo.ListActive()
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("inactive profile must not be listed as active: %+v", active)
	}

	zone := &models.ShippingZone{Name: "Live", Countries: models.StringArray{"PK"}, IsActive: true}
	if err := shippingRepo.CreateZone(zone); err != nil {
		t.Fatalf("create zone failed: %v", err)
	}
	method := &models.ShippingMethod{ZoneID: &zone.ID, Name: "Paused", FlatRate: models.NewNullMoney(100)}
	if err := shippingRepo.CreateMethod(method); err != nil {
		t.Fatalf("create method failed: %v", err)
	}
	methods, err := shippingRepo.ListActiveMethods()
	if err != nil {
		t.Fatalf("list active methods failed: %v", err)
	}
	if len(methods) != 0 {
		t.Fatalf("paused method must not be active: %+v", methods)
	}
	zones, err := shippingRepo.ListActiveZones()
	if err != nil {
		t.Fatalf("list active zones failed: %v", err)
	}
	if len(zones) != 1 || !zones[0].IsActive {
		t.Fatalf("active zone should be listed: %+v", zones)
	}
}
