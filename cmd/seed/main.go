package main

import (
	"errors"
	"os"
	"strings"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Server.IsDebug()); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	currency := strings.ToUpper(strings.TrimSpace(cfg.Cart.DefaultCurrency))
	if currency == "" {
		currency = constants.DefaultCurrency
	}

	// 分类
	categories := []models.Category{
		{Slug: "electronics", Name: "Electronics", SortOrder: 10},
		{Slug: "lifestyle", Name: "Lifestyle", SortOrder: 20},
		{Slug: "accessories", Name: "Accessories", SortOrder: 30},
	}
	categoryIDs := map[string]uint{}
	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Category already exists: %s", cat.Slug)
			categoryIDs[cat.Slug] = existing.ID
			continue
		}
		if err := models.DB.Create(&cat).Error; err != nil {
			stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			continue
		}
		stdLog.Printf("Created category: %s", cat.Slug)
		categoryIDs[cat.Slug] = cat.ID
	}

	// 商品
	products := []models.Product{
		{Slug: "wireless-earphones", Title: "Wireless Earphones", CategoryID: categoryIDs["electronics"], PriceAmount: models.NewMoneyFromInt(8999), InStock: true, IsActive: true},
		{Slug: "smart-watch", Title: "Smart Watch", CategoryID: categoryIDs["electronics"], PriceAmount: models.NewMoneyFromInt(24999), InStock: true, IsActive: true},
		{Slug: "power-bank", Title: "Portable Power Bank", CategoryID: categoryIDs["accessories"], PriceAmount: models.NewMoneyFromInt(4500), InStock: true, IsActive: true},
		{Slug: "backpack", Title: "Travel Backpack", CategoryID: categoryIDs["lifestyle"], PriceAmount: models.NewMoneyFromInt(6500), InStock: true, IsActive: true},
		{Slug: "desk-lamp", Title: "Desk Lamp (sold out)", CategoryID: categoryIDs["lifestyle"], PriceAmount: models.NewMoneyFromInt(3000), InStock: false, IsActive: true},
	}
	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Product already exists: %s", product.Slug)
			continue
		}
		product.PriceCurrency = currency
		inStock := product.InStock
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			continue
		}
		// in_stock 列带默认值，零值 false 需单独回写
		if !inStock {
			models.DB.Model(&product).UpdateColumn("in_stock", false)
		}
		stdLog.Printf("Created product: %s", product.Slug)
		if product.Slug == "smart-watch" {
			variants := []models.ProductVariant{
				{ProductID: product.ID, SKU: "WATCH-41MM", InStock: true, IsActive: true},
				{ProductID: product.ID, SKU: "WATCH-45MM", PriceAmount: models.NewNullMoney(27999), InStock: true, IsActive: true},
			}
			if err := models.DB.Create(&variants).Error; err != nil {
				stdLog.Printf("Failed to create variants for %s: %v", product.Slug, err)
			}
		}
	}

	seedPricing(stdLog)
	seedDiscounts(stdLog, categoryIDs["electronics"])

	// 管理员与演示顾客
	adminPass := os.Getenv("SF_DEFAULT_ADMIN_PASSWORD")
	if adminPass == "" {
		adminPass = "admin123456"
	}
	if err := models.InitDefaultAdmin(os.Getenv("SF_DEFAULT_ADMIN_USERNAME"), adminPass); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	var demoUser models.User
	if err := models.DB.Where("email = ?", "demo@storefront.local").First(&demoUser).Error; err != nil {
		demoUser = models.User{Email: "demo@storefront.local", DisplayName: "Demo Buyer", Status: constants.UserStatusActive}
		if err := models.DB.Create(&demoUser).Error; err != nil {
			stdLog.Printf("Failed to create demo user: %v", err)
		}
	}
	tokens := service.NewUserTokenService(cfg, repository.NewUserRepository(models.DB))
	if _, token, _, err := tokens.IssueForEmail(demoUser.Email); err != nil {
		stdLog.Printf("Failed to issue demo user token: %v", err)
	} else {
		stdLog.Printf("Demo user token: %s", token)
	}

	stdLog.Printf("Seed completed")
}

func seedPricing(stdLog interface{ Printf(string, ...interface{}) }) {
	var taxCount int64
	models.DB.Model(&models.TaxProfile{}).Count(&taxCount)
	if taxCount == 0 {
		profiles := []models.TaxProfile{
			{Name: "PK GST", CountryCode: "PK", Rate: decimal.NewFromInt(17), Priority: 10, IsActive: true},
			{Name: "Punjab services", CountryCode: "PK", StateCode: "PB", Rate: decimal.NewFromInt(1), Priority: 20, IsActive: true},
			{Name: "AE VAT (inclusive)", CountryCode: "AE", Rate: decimal.NewFromInt(5), Inclusive: true, Priority: 10, IsActive: true},
		}
		if err := models.DB.Create(&profiles).Error; err != nil {
			stdLog.Printf("Failed to create tax profiles: %v", err)
		} else {
			stdLog.Printf("Created %d tax profiles", len(profiles))
		}
	}

	var zoneCount int64
	models.DB.Model(&models.ShippingZone{}).Count(&zoneCount)
	if zoneCount > 0 {
		stdLog.Printf("Shipping config already exists")
		return
	}
	domestic := models.ShippingZone{Name: "Pakistan", Countries: models.StringArray{"PK"}, IsActive: true}
	metro := models.ShippingZone{Name: "Karachi metro", Countries: models.StringArray{"PK"}, Cities: models.StringArray{"karachi"}, IsActive: true}
	for _, zone := range []*models.ShippingZone{&domestic, &metro} {
		if err := models.DB.Create(zone).Error; err != nil {
			stdLog.Printf("Failed to create zone %s: %v", zone.Name, err)
			return
		}
	}

	methods := []models.ShippingMethod{
		{ZoneID: &domestic.ID, Name: "Standard", FlatRate: models.NewNullMoney(250), FreeOver: models.NewNullMoney(10000), SortOrder: 10, IsActive: true},
		{ZoneID: &domestic.ID, Name: "Courier (tiered)", SortOrder: 20, IsActive: true},
		{ZoneID: &metro.ID, Name: "Same day", FlatRate: models.NewNullMoney(500), SortOrder: 1, IsActive: true},
		{Name: "International", FlatRate: models.NewNullMoney(3500), SortOrder: 90, IsActive: true},
	}
	if err := models.DB.Create(&methods).Error; err != nil {
		stdLog.Printf("Failed to create shipping methods: %v", err)
		return
	}
	rates := []models.ShippingRate{
		{MethodID: methods[1].ID, MaxSubtotal: models.NewNullMoney(4999), Rate: models.NewMoneyFromInt(400), IsActive: true},
		{MethodID: methods[1].ID, MinSubtotal: models.NewNullMoney(5000), MaxSubtotal: models.NewNullMoney(19999), Rate: models.NewMoneyFromInt(200), IsActive: true},
		{MethodID: methods[1].ID, MinSubtotal: models.NewNullMoney(20000), Rate: models.NewMoneyFromInt(0), IsActive: true},
	}
	if err := models.DB.Create(&rates).Error; err != nil {
		stdLog.Printf("Failed to create shipping rates: %v", err)
		return
	}
	stdLog.Printf("Created shipping zones, methods and rates")
}

func seedDiscounts(stdLog interface{ Printf(string, ...interface{}) }, electronicsID uint) {
	svc := service.NewDiscountAdminService(
		repository.NewDiscountRepository(models.DB),
		repository.NewDiscountRedemptionRepository(models.DB),
	)
	once := 1
	inputs := []service.SaveDiscountInput{
		{Name: "Welcome 10%", Type: constants.DiscountTypePercent, Value: models.NewMoneyFromInt(10), PerCustomerLimit: &once, Codes: []string{"WELCOME10"}},
		{Name: "Electronics 500 off", Type: constants.DiscountTypeFixed, Value: models.NewMoneyFromInt(500), MinSubtotal: models.NewNullMoney(5000), CategoryIDs: []uint{electronicsID}, Codes: []string{"GADGET500"}},
		{Name: "Free shipping", Type: constants.DiscountTypeShipping, Value: models.NewMoneyFromInt(0), Codes: []string{"SHIPFREE"}},
	}
	for _, input := range inputs {
		if _, err := svc.Create(input); err != nil {
			if errors.Is(err, service.ErrDiscountCodeExists) {
				stdLog.Printf("Discount already exists: %s", input.Name)
				continue
			}
			stdLog.Printf("Failed to create discount %s: %v", input.Name, err)
			continue
		}
		stdLog.Printf("Created discount: %s", input.Name)
	}
}
