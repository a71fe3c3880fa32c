package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Discount 优惠规则
type Discount struct {
	ID               uint                `gorm:"primarykey" json:"id"`                               // 主键
	Name             string              `gorm:"not null" json:"name"`                               // 名称
	Type             string              `gorm:"type:varchar(20);not null" json:"type"`              // 类型（percent/fixed/shipping）
	Value            Money               `gorm:"type:decimal(20,2);not null;default:0" json:"value"` // 数值（百分比或金额）
	StartsAt         *time.Time          `gorm:"index" json:"starts_at"`                             // 生效时间
	EndsAt           *time.Time          `gorm:"index" json:"ends_at"`                               // 失效时间
	MinSubtotal      NullMoney           `gorm:"type:decimal(20,2)" json:"min_subtotal"`             // 门槛（按可用小计判断）
	MaxRedemptions   *int                `json:"max_redemptions"`                                    // 总使用上限
	PerCustomerLimit *int                `json:"per_customer_limit"`                                 // 每位顾客使用上限
	Eligibility      DiscountEligibility `gorm:"type:text" json:"eligibility"`                       // 适用商品/分类
	Stackable        bool                `gorm:"not null;default:false" json:"stackable"`            // 是否可叠加（保留字段，当前仅支持单码）
	IsActive         bool                `gorm:"not null;default:true;index" json:"is_active"`       // 是否启用
	CreatedAt        time.Time           `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt        time.Time           `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt        gorm.DeletedAt      `gorm:"index" json:"-"`                                     // 软删除时间

	Codes []DiscountCode `gorm:"foreignKey:DiscountID" json:"codes,omitempty"` // 优惠码
}

// TableName 指定表名
func (Discount) TableName() string {
	return "discounts"
}

// DiscountEligibility 优惠适用范围
type DiscountEligibility struct {
	ProductIDs  []uint `json:"product_ids,omitempty"`
	CategoryIDs []uint `json:"category_ids,omitempty"`
}

// Value 实现 driver.Valuer 接口
func (e DiscountEligibility) Value() (driver.Value, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(body), nil
}

// Scan 实现 sql.Scanner 接口
func (e *DiscountEligibility) Scan(value interface{}) error {
	*e = DiscountEligibility{}
	var body []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		body = v
	case string:
		body = []byte(v)
	default:
		return nil
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, e)
}

// Kind 返回适用范围类型
func (e DiscountEligibility) Kind() string {
	hasProducts := len(e.ProductIDs) > 0
	hasCategories := len(e.CategoryIDs) > 0
	switch {
	case hasProducts && hasCategories:
		return constants.EligibilityProductAndCategory
	case hasProducts:
		return constants.EligibilityProduct
	case hasCategories:
		return constants.EligibilityCategory
	default:
		return constants.EligibilityNone
	}
}

// IsKnownDiscountType 判断优惠类型是否合法
func IsKnownDiscountType(t string) bool {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case constants.DiscountTypePercent, constants.DiscountTypeFixed, constants.DiscountTypeShipping:
		return true
	default:
		return false
	}
}

// NewDiscount 创建并校验优惠规则
func NewDiscount(name, discountType string, value Money) (*Discount, error) {
	d := &Discount{
		Name:     strings.TrimSpace(name),
		Type:     strings.ToLower(strings.TrimSpace(discountType)),
		Value:    value,
		IsActive: true,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate 校验优惠规则必填项
func (d *Discount) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	if !IsKnownDiscountType(d.Type) {
		return ErrInvalidDiscountType
	}
	if d.Value.Decimal.IsNegative() {
		return ErrInvalidDiscountValue
	}
	switch d.Type {
	case constants.DiscountTypePercent:
		if !d.Value.IsPositive() || d.Value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidDiscountValue
		}
	case constants.DiscountTypeFixed:
		if !d.Value.IsPositive() {
			return ErrInvalidDiscountValue
		}
	}
	if d.StartsAt != nil && d.EndsAt != nil && d.EndsAt.Before(*d.StartsAt) {
		return ErrInvalidDiscountRange
	}
	if d.MinSubtotal.IsNegative() {
		return ErrInvalidLimit
	}
	if d.MaxRedemptions != nil && *d.MaxRedemptions < 0 {
		return ErrInvalidLimit
	}
	if d.PerCustomerLimit != nil && *d.PerCustomerLimit < 0 {
		return ErrInvalidLimit
	}
	return nil
}

// DiscountCode 优惠码
type DiscountCode struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	DiscountID     uint           `gorm:"not null;index" json:"discount_id"`                            // 优惠规则ID
	Code           string         `gorm:"type:varchar(64);not null" json:"code"`                        // 原始优惠码
	NormalizedCode string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"normalized_code"` // 规范化优惠码（小写）
	IsActive       bool           `gorm:"not null;default:true;index" json:"is_active"`                 // 是否启用
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (DiscountCode) TableName() string {
	return "discount_codes"
}

// NormalizeDiscountCode 优惠码规范化（去空白、小写）
func NormalizeDiscountCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// NewDiscountCode 创建优惠码
func NewDiscountCode(discountID uint, code string) (*DiscountCode, error) {
	trimmed := strings.TrimSpace(code)
	if discountID == 0 || trimmed == "" {
		return nil, ErrDiscountCodeRequired
	}
	return &DiscountCode{
		DiscountID:     discountID,
		Code:           trimmed,
		NormalizedCode: NormalizeDiscountCode(trimmed),
		IsActive:       true,
	}, nil
}

// DiscountRedemption 优惠使用记录（下单时写入，计价引擎只读）
type DiscountRedemption struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                // 主键
	DiscountID uint           `gorm:"not null;index" json:"discount_id"`                   // 优惠规则ID
	CodeID     uint           `gorm:"index" json:"code_id"`                                // 优惠码ID
	UserID     *uint          `gorm:"index" json:"user_id,omitempty"`                      // 用户ID
	GuestToken *string        `gorm:"type:varchar(64);index" json:"guest_token,omitempty"` // 游客令牌
	OrderRef   string         `gorm:"type:varchar(64);index" json:"order_ref"`             // 订单号
	Amount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"` // 优惠金额
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (DiscountRedemption) TableName() string {
	return "discount_redemptions"
}

// DiscountSnapshot 购物车/订单上保存的优惠规则快照
type DiscountSnapshot struct {
	DiscountID    uint                `json:"discount_id"`
	CodeID        uint                `json:"code_id"`
	Code          string              `json:"code"`
	DiscountType  string              `json:"discount_type"`
	DiscountValue Money               `json:"discount_value"`
	Eligibility   DiscountEligibility `json:"eligibility"`
}

// IsZero 是否为空快照
func (s DiscountSnapshot) IsZero() bool {
	return s.DiscountID == 0
}

// Value 实现 driver.Valuer 接口，空快照写入 NULL
func (s DiscountSnapshot) Value() (driver.Value, error) {
	if s.IsZero() {
		return nil, nil
	}
	body, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(body), nil
}

// Scan 实现 sql.Scanner 接口
func (s *DiscountSnapshot) Scan(value interface{}) error {
	*s = DiscountSnapshot{}
	var body []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		body = v
	case string:
		body = []byte(v)
	default:
		return nil
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, s)
}
