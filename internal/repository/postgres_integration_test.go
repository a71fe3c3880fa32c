//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := models.AllModels()
	_ = db.Migrator().DropTable(cleanupModels...)
	if err := db.AutoMigrate(cleanupModels...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresDiscountKeywordSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewDiscountRepository(db)

	discount := &models.Discount{
		Name:     "Spring Sale",
		Type:     constants.DiscountTypePercent,
		Value:    models.NewMoneyFromInt(10),
		IsActive: true,
	}
	if err := repo.Create(discount); err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	code, err := models.NewDiscountCode(discount.ID, "Bloom-2026")
	if err != nil {
		t.Fatalf("new discount code failed: %v", err)
	}
	if err := repo.CreateCode(code); err != nil {
		t.Fatalf("create discount code failed: %v", err)
	}

	for _, keyword := range []string{"spring", "SALE", "bloom"} {
		rows, total, err := repo.List(DiscountListFilter{Page: 1, PageSize: 20, Keyword: keyword})
		if err != nil {
			t.Fatalf("discount search %q failed: %v", keyword, err)
		}
		if total != 1 || len(rows) != 1 || len(rows[0].Codes) != 1 {
			t.Fatalf("discount search %q want 1 got total=%d len=%d", keyword, total, len(rows))
		}
	}
}

func TestPostgresPricingConfigAndStaleCarts(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	taxRepo := NewTaxProfileRepository(db)
	inactive := &models.TaxProfile{Name: "Paused", CountryCode: "PK", Rate: decimal.NewFromInt(3)}
	if err := taxRepo.Create(inactive); err != nil {
		t.Fatalf("create tax profile failed: %v", err)
	}
	active := &models.TaxProfile{Name: "GST", CountryCode: "PK", Rate: decimal.RequireFromString("17.5"), IsActive: true}
	if err := taxRepo.Create(active); err != nil {
		t.Fatalf("create tax profile failed: %v", err)
	}
	profiles, err := taxRepo.ListActive()
	if err != nil {
		t.Fatalf("list active tax profiles failed: %v", err)
	}
	if len(profiles) != 1 || !profiles[0].Rate.Equal(decimal.RequireFromString("17.5")) {
		t.Fatalf("unexpected active profiles: %+v", profiles)
	}

	cartRepo := NewCartRepository(db)
	stale := models.NewGuestCart("pg-stale", "PKR", now.Add(-72*time.Hour))
	fresh := models.NewGuestCart("pg-fresh", "PKR", now)
	owned := models.NewUserCart(9, "PKR", now.Add(-72*time.Hour))
	for _, cart := range []*models.Cart{stale, fresh, owned} {
		if err := cartRepo.Create(cart); err != nil {
			t.Fatalf("create cart failed: %v", err)
		}
	}
	ids, err := cartRepo.ListStaleGuestCartIDs(now.Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("list stale guest carts failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != stale.ID {
		t.Fatalf("stale guest carts want [%d] got %v", stale.ID, ids)
	}
	deleted, err := cartRepo.DeleteStaleGuestCarts(ids, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("delete carts failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted carts want 1 got %d", deleted)
	}
}
