package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/discounts/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"ops"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/api/v1/admin/discounts/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/discounts/42", "POST")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/tax-profiles", "GET"); err != nil {
		t.Fatalf("grant ops policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("finance", "/admin/discount-redemptions", "GET"); err != nil {
		t.Fatalf("grant finance policy failed: %v", err)
	}

	if err := svc.SetAdminRoles(2, []string{"ops"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:ops" {
		t.Fatalf("roles want [role:ops], got=%v", roles)
	}

	if err := svc.SetAdminRoles(2, []string{"finance"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:finance" {
		t.Fatalf("roles want [role:finance], got=%v", roles)
	}

	allow, err := svc.EnforceAdmin(2, "/admin/tax-profiles", "GET")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}

	allow, err = svc.EnforceAdmin(2, "/admin/discount-redemptions", "GET")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/shipping-zones/:id", want: "/admin/shipping-zones/:id"},
		{in: "/admin/shipping-zones/:id", want: "/admin/shipping-zones/:id"},
		{in: "admin/discounts", want: "/admin/discounts"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap should be idempotent: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:readonly_auditor":   true,
		"role:pricing_manager":    true,
		"role:order_collaborator": true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetAdminRoles(3, []string{"pricing_manager"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	cases := []struct {
		object string
		action string
		want   bool
	}{
		{"/api/v1/admin/discount-redemptions", "GET", true},
		{"/api/v1/admin/discounts/:id", "PUT", true},
		{"/api/v1/admin/shipping-methods/:id/rates", "POST", true},
		{"/api/v1/admin/discount-redemptions", "POST", false},
		{"/api/v1/admin/authz/admins/:id/roles", "PUT", false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceAdmin(3, tc.object, tc.action)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", tc.action, tc.object, err)
		}
		if allow != tc.want {
			t.Fatalf("enforce %s %s want %v got %v", tc.action, tc.object, tc.want, allow)
		}
	}

	if err := svc.SetAdminRoles(4, []string{"order_collaborator"}); err != nil {
		t.Fatalf("set collaborator role failed: %v", err)
	}
	allow, err := svc.EnforceAdmin(4, "/api/v1/admin/discounts", "GET")
	if err != nil {
		t.Fatalf("enforce collaborator read failed: %v", err)
	}
	if allow {
		t.Fatalf("collaborator must not read pricing config")
	}
}

func TestRevokeRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("pricing", "/admin/tax-profiles", "*"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	policies, err := svc.GetRolePolicies("pricing")
	if err != nil {
		t.Fatalf("get policies failed: %v", err)
	}
	if len(policies) != 1 || policies[0].Action != "*" {
		t.Fatalf("unexpected policies: %+v", policies)
	}
	if err := svc.RevokeRolePolicy("pricing", "/admin/tax-profiles", "*"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	policies, err = svc.GetRolePolicies("pricing")
	if err != nil {
		t.Fatalf("get policies failed: %v", err)
	}
	if len(policies) != 0 {
		t.Fatalf("policy should be revoked: %+v", policies)
	}
}
