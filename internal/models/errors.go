package models

import "errors"

// 模型校验错误
var (
	ErrInvalidDiscountType  = errors.New("invalid discount type")
	ErrInvalidDiscountValue = errors.New("invalid discount value")
	ErrInvalidDiscountRange = errors.New("discount starts_at must be before ends_at")
	ErrInvalidLimit         = errors.New("limit must not be negative")
	ErrDiscountCodeRequired = errors.New("discount code is required")
	ErrCountryCodeRequired  = errors.New("country code is required")
	ErrInvalidTaxRate       = errors.New("invalid tax rate")
	ErrInvalidShippingRate  = errors.New("invalid shipping rate")
	ErrInvalidSubtotalRange = errors.New("min_subtotal must not exceed max_subtotal")
	ErrNameRequired         = errors.New("name is required")
	ErrCartOwnerInvalid     = errors.New("cart must be owned by exactly one of user or guest token")
)
