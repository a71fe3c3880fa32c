package constants

// 购物车状态常量
const (
	CartStatusActive = "active"
	CartStatusMerged = "merged"
)

// 优惠类型常量
const (
	DiscountTypePercent  = "percent"
	DiscountTypeFixed    = "fixed"
	DiscountTypeShipping = "shipping"
)

// 优惠适用范围（由 eligibility 解码得到）
const (
	EligibilityNone               = "none"
	EligibilityProduct            = "product"
	EligibilityCategory           = "category"
	EligibilityProductAndCategory = "product_and_category"
)

// 优惠码拒绝原因
const (
	DiscountRejectNoCode           = "no_code"
	DiscountRejectCodeNotFound     = "code_not_found"
	DiscountRejectCodeInactive     = "code_inactive"
	DiscountRejectDiscountNotFound = "discount_not_found"
	DiscountRejectDiscountInactive = "discount_inactive"
	DiscountRejectNotStarted       = "not_started"
	DiscountRejectExpired          = "expired"
	DiscountRejectNoEligibleItems  = "no_eligible_items"
	DiscountRejectMinSubtotal      = "min_subtotal"
	DiscountRejectUsageLimit       = "usage_limit"
	DiscountRejectPerCustomerLimit = "per_customer_limit"
	DiscountRejectUnknownType      = "unknown_type"
	DiscountRejectZeroAmount       = "zero_amount"
	DiscountRejectLookupFailed     = "lookup_failed"
)

// 默认值
const (
	DefaultCurrency         = "PKR"
	DefaultGuestTokenHeader = "X-Guest-Token"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskCartMerged       = "cart:merged"
	TaskCartCodeRejected = "cart:code_rejected"
	TaskGuestCartCleanup = "cart:guest_cleanup"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
