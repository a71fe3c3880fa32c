package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/storefront-next/internal/authz"
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	adminhandlers "github.com/storefront-next/internal/http/handlers/admin"
	publichandlers "github.com/storefront-next/internal/http/handlers/public"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sf"
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	discountCodeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:discount_code", redisPrefix),
		WindowSeconds: cfg.Security.DiscountCodeRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.DiscountCodeRateLimit.MaxAttempts,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 无状态报价
		public := apiV1.Group("/public")
		{
			public.POST("/tax-quote", publicHandler.PostTaxQuote)
			public.POST("/shipping-quote", publicHandler.PostShippingQuote)
		}

		// 购物车（登录用户或游客令牌）
		carts := apiV1.Group("/carts")
		carts.Use(CartIdentityMiddleware(cfg.UserJWT.SecretKey, c.UserRepo, cfg.Cart))
		{
			carts.POST("", publicHandler.CreateCart)
			carts.POST("/merge", publicHandler.MergeCart)
			carts.GET("/:id", publicHandler.GetCart)
			carts.POST("/:id/items", publicHandler.AddCartItem)
			carts.PATCH("/:id/items/:item_id", publicHandler.UpdateCartItem)
			carts.DELETE("/:id/items/:item_id", publicHandler.DeleteCartItem)
			carts.POST("/:id/discount-code", RateLimitMiddleware(redisClient, discountCodeRule, KeyByIPAndParam("id")), publicHandler.ApplyDiscountCode)
			carts.DELETE("/:id/discount-code", publicHandler.RemoveDiscountCode)
			carts.PUT("/:id/address", publicHandler.SetCartAddress)
			carts.GET("/:id/shipping-options", publicHandler.GetShippingOptions)
			carts.PUT("/:id/shipping-method", publicHandler.SelectShippingMethod)
			carts.GET("/:id/checkout-quote", publicHandler.GetCheckoutQuote)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.GetAdminMe)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 折扣与折扣码
				authorized.GET("/discounts", adminHandler.GetAdminDiscounts)
				authorized.GET("/discounts/:id", adminHandler.GetAdminDiscount)
				authorized.POST("/discounts", adminHandler.CreateDiscount)
				authorized.PUT("/discounts/:id", adminHandler.UpdateDiscount)
				authorized.DELETE("/discounts/:id", adminHandler.DeleteDiscount)
				authorized.POST("/discounts/:id/codes", adminHandler.AddDiscountCode)
				authorized.PATCH("/discount-codes/:id", adminHandler.UpdateDiscountCode)
				authorized.DELETE("/discount-codes/:id", adminHandler.DeleteDiscountCode)
				authorized.GET("/discount-redemptions", adminHandler.GetDiscountRedemptions)
				authorized.POST("/discount-redemptions", adminHandler.RecordDiscountRedemption)

				// 税费
				authorized.GET("/tax-profiles", adminHandler.GetTaxProfiles)
				authorized.POST("/tax-profiles", adminHandler.CreateTaxProfile)
				authorized.PUT("/tax-profiles/:id", adminHandler.UpdateTaxProfile)
				authorized.DELETE("/tax-profiles/:id", adminHandler.DeleteTaxProfile)

				// 运费
				authorized.GET("/shipping-zones", adminHandler.GetShippingZones)
				authorized.POST("/shipping-zones", adminHandler.CreateShippingZone)
				authorized.PUT("/shipping-zones/:id", adminHandler.UpdateShippingZone)
				authorized.DELETE("/shipping-zones/:id", adminHandler.DeleteShippingZone)
				authorized.GET("/shipping-methods", adminHandler.GetShippingMethods)
				authorized.POST("/shipping-methods", adminHandler.CreateShippingMethod)
				authorized.PUT("/shipping-methods/:id", adminHandler.UpdateShippingMethod)
				authorized.DELETE("/shipping-methods/:id", adminHandler.DeleteShippingMethod)
				authorized.POST("/shipping-methods/:id/rates", adminHandler.CreateShippingRate)
				authorized.PUT("/shipping-rates/:id", adminHandler.UpdateShippingRate)
				authorized.DELETE("/shipping-rates/:id", adminHandler.DeleteShippingRate)

				// 权限管理
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") || item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

// deriveAdminPermissionModule 按资源归组，折扣码/核销并入 discounts，运费三类并入 shipping
func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	resource := segments[1]
	switch {
	case strings.HasPrefix(resource, "discount"):
		return "discounts"
	case strings.HasPrefix(resource, "shipping-"):
		return "shipping"
	}
	return resource
}
