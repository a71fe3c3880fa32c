package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResolveLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		header string
		value  string
		want   string
	}{
		{"", "", LocaleEnUS},
		{"Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8", LocaleZhCN},
		{"Accept-Language", "fr-FR,en;q=0.5", LocaleEnUS},
		{"Accept-Language", "!!", LocaleEnUS},
		{"X-Locale", "zh-Hans", LocaleZhCN},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		if tc.header != "" {
			c.Request.Header.Set(tc.header, tc.value)
		}
		if got := ResolveLocale(c); got != tc.want {
			t.Fatalf("%s=%q want %s got %s", tc.header, tc.value, tc.want, got)
		}
	}
}

func TestTFallsBack(t *testing.T) {
	if got := T(LocaleZhCN, "error.cart_not_found"); got != "购物车不存在" {
		t.Fatalf("unexpected zh message %q", got)
	}
	if got := T("de-DE", "error.cart_not_found"); got != "Cart not found" {
		t.Fatalf("unknown locale should fall back to english, got %q", got)
	}
	if got := T(LocaleEnUS, "error.missing_key"); got != "error.missing_key" {
		t.Fatalf("missing key should echo key, got %q", got)
	}
	for key := range messages[LocaleEnUS] {
		if _, ok := messages[LocaleZhCN][key]; !ok {
			t.Fatalf("zh-CN table is missing %s", key)
		}
	}
}
