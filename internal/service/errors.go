package service

import "errors"

// 通用
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAdminDisabled      = errors.New("admin disabled")
	ErrUserDisabled       = errors.New("user disabled")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password too weak")

	errEmptySecret = errors.New("jwt secret is empty")
)

// 购物车
var (
	ErrCartNotFound        = errors.New("cart not found")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrCartForbidden       = errors.New("cart does not belong to caller")
	ErrCartInactive        = errors.New("cart is not active")
	ErrInvalidCartItem     = errors.New("invalid cart item")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrGuestTokenRequired  = errors.New("guest token required")
	ErrProductNotAvailable = errors.New("product not available")
	ErrProductOutOfStock   = errors.New("product out of stock")
)

// 优惠与配送
var (
	ErrDiscountNotFound          = errors.New("discount not found")
	ErrDiscountCodeNotFound      = errors.New("discount code not found")
	ErrDiscountCodeRejected      = errors.New("discount code is invalid or not eligible")
	ErrDiscountCodeExists        = errors.New("discount code already exists")
	ErrShippingMethodNotFound    = errors.New("shipping method not found")
	ErrShippingMethodUnavailable = errors.New("shipping method unavailable for cart")
	ErrShippingZoneNotFound      = errors.New("shipping zone not found")
	ErrShippingZoneInUse         = errors.New("shipping zone still referenced by methods")
	ErrShippingRateNotFound      = errors.New("shipping rate not found")
	ErrTaxProfileNotFound        = errors.New("tax profile not found")
)

// DiscountRejection 优惠码被拒绝，携带拒绝原因
type DiscountRejection struct {
	Reason string
}

func (e *DiscountRejection) Error() string {
	return ErrDiscountCodeRejected.Error() + ": " + e.Reason
}

func (e *DiscountRejection) Unwrap() error {
	return ErrDiscountCodeRejected
}
