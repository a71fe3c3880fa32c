package repository

import "time"

// DiscountListFilter 查询优惠规则列表的过滤条件
type DiscountListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Type     string
	IsActive *bool
}

// RedemptionListFilter 查询优惠使用记录列表的过滤条件
type RedemptionListFilter struct {
	Page        int
	PageSize    int
	DiscountID  uint
	UserID      uint
	OrderRef    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// TaxProfileListFilter 查询税率配置列表的过滤条件
type TaxProfileListFilter struct {
	Page        int
	PageSize    int
	CountryCode string
	IsActive    *bool
}
