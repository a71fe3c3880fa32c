package service

import (
	"errors"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *UserTokenService, *pricingFixture) {
	t.Helper()
	f := setupPricingTest(t)
	cfg := &config.Config{
		JWT:     config.JWTConfig{SecretKey: "admin-secret-for-tests", ExpireHours: 1},
		UserJWT: config.JWTConfig{SecretKey: "user-secret-for-tests", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 10, RequireNumber: true},
		},
	}
	return NewAuthService(cfg, repository.NewAdminRepository(f.db)), NewUserTokenService(cfg, repository.NewUserRepository(f.db)), f
}

func seedAdmin(t *testing.T, svc *AuthService, username, password string) *models.Admin {
	t.Helper()
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{Username: username, PasswordHash: hash}
	if err := models.DB.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestAuthServiceLoginIssuesParsableToken(t *testing.T) {
	svc, _, _ := setupAuthServiceTest(t)
	seedAdmin(t, svc, "pricing", "Initial-pass-1")

	if _, _, _, err := svc.Login("pricing", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
	if _, _, _, err := svc.Login("nobody", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown admin should be ErrInvalidCredentials, got %v", err)
	}

	admin, token, expiresAt, err := svc.Login(" pricing ", "Initial-pass-1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if admin.LastLoginAt == nil || expiresAt.IsZero() {
		t.Fatalf("login should stamp last_login_at and expiry")
	}
	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse jwt failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "pricing" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthServiceChangePasswordAppliesPolicy(t *testing.T) {
	svc, _, _ := setupAuthServiceTest(t)
	admin := seedAdmin(t, svc, "ops", "Initial-pass-1")

	if err := svc.ChangePassword(admin.ID, "bad-old", "Another-pass-2"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("want ErrInvalidPassword got %v", err)
	}
	err := svc.ChangePassword(admin.ID, "Initial-pass-1", "short1")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword got %v", err)
	}
	var perr passwordPolicyError
	if !errors.As(err, &perr) || perr.Key() != "error.password_min_length" || perr.Args()[0] != 10 {
		t.Fatalf("unexpected policy error: %#v", err)
	}
	if err := svc.ChangePassword(admin.ID, "Initial-pass-1", "no-digits-here"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("password without digit should be rejected, got %v", err)
	}
	if err := svc.ChangePassword(9999, "x", "Another-pass-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}

	if err := svc.ChangePassword(admin.ID, "Initial-pass-1", "Another-pass-2"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	var stored models.Admin
	if err := models.DB.First(&stored, admin.ID).Error; err != nil {
		t.Fatalf("reload admin failed: %v", err)
	}
	if stored.TokenVersion != admin.TokenVersion+1 || stored.TokenInvalidBefore == nil {
		t.Fatalf("password change should revoke old tokens: %+v", stored)
	}
	if _, _, _, err := svc.Login("ops", "Another-pass-2"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestUserTokenServiceRoundTrip(t *testing.T) {
	_, tokens, _ := setupAuthServiceTest(t)
	user := &models.User{Email: "buyer@example.com", Status: constants.UserStatusActive}
	if err := models.DB.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	issued, token, _, err := tokens.IssueForEmail("buyer@example.com")
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	claims, err := tokens.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse user jwt failed: %v", err)
	}
	if claims.UserID != issued.ID || claims.Email != "buyer@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := tokens.ParseUserJWT(token + "x"); err == nil {
		t.Fatalf("tampered token should fail")
	}
	if _, _, _, err := tokens.IssueForEmail("missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}

	disabled := &models.User{Email: "off@example.com", Status: "disabled"}
	if err := models.DB.Create(disabled).Error; err != nil {
		t.Fatalf("create disabled user failed: %v", err)
	}
	if _, _, _, err := tokens.IssueForEmail("off@example.com"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("want ErrUserDisabled got %v", err)
	}
}
