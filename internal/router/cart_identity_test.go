package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const cartIdentityTestSecret = "cart-identity-secret"

func setupCartIdentityRouter(t *testing.T) (*gin.Engine, *models.User, *service.UserTokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	user := &models.User{Email: "buyer@example.com", Status: constants.UserStatusActive}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	cfg := &config.Config{UserJWT: config.JWTConfig{SecretKey: cartIdentityTestSecret, ExpireHours: 1}}
	tokens := service.NewUserTokenService(cfg, userRepo)

	r := gin.New()
	r.Use(CartIdentityMiddleware(cartIdentityTestSecret, userRepo, config.CartConfig{}))
	r.GET("/carts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetUint(userIDContextKey),
			"guest_token": c.GetString(guestTokenContextKey),
		})
	})
	return r, user, tokens
}

type cartIdentityResult struct {
	StatusCode int    `json:"status_code"`
	UserID     uint   `json:"user_id"`
	GuestToken string `json:"guest_token"`
}

func serveCartIdentity(t *testing.T, r *gin.Engine, headers map[string]string) cartIdentityResult {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/carts", nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp cartIdentityResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func TestCartIdentityMiddlewareGuestToken(t *testing.T) {
	r, _, _ := setupCartIdentityRouter(t)

	resp := serveCartIdentity(t, r, map[string]string{constants.DefaultGuestTokenHeader: " guest-abc "})
	if resp.GuestToken != "guest-abc" || resp.UserID != 0 {
		t.Fatalf("unexpected identity: %+v", resp)
	}

	resp = serveCartIdentity(t, r, nil)
	if resp.GuestToken != "" || resp.UserID != 0 {
		t.Fatalf("anonymous request should pass without identity: %+v", resp)
	}

	resp = serveCartIdentity(t, r, map[string]string{constants.DefaultGuestTokenHeader: strings.Repeat("x", maxGuestTokenLength+1)})
	if resp.StatusCode != 400 {
		t.Fatalf("oversized guest token status_code want 400 got %d", resp.StatusCode)
	}
}

func TestCartIdentityMiddlewareUserToken(t *testing.T) {
	r, user, tokens := setupCartIdentityRouter(t)
	token, _, err := tokens.GenerateUserJWT(user)
	if err != nil {
		t.Fatalf("generate user jwt failed: %v", err)
	}

	resp := serveCartIdentity(t, r, map[string]string{
		"Authorization":                   "Bearer " + token,
		constants.DefaultGuestTokenHeader: "guest-merge",
	})
	if resp.UserID != user.ID || resp.GuestToken != "guest-merge" {
		t.Fatalf("user and guest identity should both be set: %+v", resp)
	}

	resp = serveCartIdentity(t, r, map[string]string{"Authorization": "Bearer not-a-jwt"})
	if resp.StatusCode != 401 {
		t.Fatalf("invalid bearer status_code want 401 got %d", resp.StatusCode)
	}

	resp = serveCartIdentity(t, r, map[string]string{"Authorization": "Token " + token})
	if resp.StatusCode != 401 {
		t.Fatalf("malformed authorization header status_code want 401 got %d", resp.StatusCode)
	}
}

func TestDeriveAdminPermissionModule(t *testing.T) {
	cases := map[string]string{
		"/admin/discounts/:id":        "discounts",
		"/admin/discount-codes/:id":   "discounts",
		"/admin/discount-redemptions": "discounts",
		"/admin/shipping-methods/:id": "shipping",
		"/admin/shipping-rates/:id":   "shipping",
		"/admin/tax-profiles":         "tax-profiles",
		"/admin/authz/roles/:role":    "authz",
		"/":                           "system",
	}
	for object, want := range cases {
		if got := deriveAdminPermissionModule(object); got != want {
			t.Fatalf("module for %s want %s got %s", object, want, got)
		}
	}
}
