package service

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/models"
)

// CartOwner 购物车归属（登录用户或游客令牌，二选一）
type CartOwner struct {
	UserID     uint
	GuestToken string
}

// IsGuest 是否游客
func (o CartOwner) IsGuest() bool {
	return o.UserID == 0
}

// IsZero 是否未识别任何身份
func (o CartOwner) IsZero() bool {
	return o.UserID == 0 && strings.TrimSpace(o.GuestToken) == ""
}

// Owns 判断购物车是否属于该身份
func (o CartOwner) Owns(cart *models.Cart) bool {
	if cart == nil || o.IsZero() {
		return false
	}
	if o.UserID != 0 {
		return cart.UserID != nil && *cart.UserID == o.UserID
	}
	return cart.GuestToken != nil && *cart.GuestToken == strings.TrimSpace(o.GuestToken)
}

// OwnerOfCart 从购物车读取归属
func OwnerOfCart(cart *models.Cart) CartOwner {
	if cart == nil {
		return CartOwner{}
	}
	owner := CartOwner{}
	if cart.UserID != nil {
		owner.UserID = *cart.UserID
	}
	if cart.GuestToken != nil {
		owner.GuestToken = *cart.GuestToken
	}
	return owner
}

// PricingContext 一次计价使用的显式上下文
type PricingContext struct {
	Owner CartOwner
	Now   time.Time
}

// NewPricingContext 创建计价上下文
func NewPricingContext(owner CartOwner, now time.Time) PricingContext {
	if now.IsZero() {
		now = time.Now()
	}
	return PricingContext{Owner: owner, Now: now}
}
