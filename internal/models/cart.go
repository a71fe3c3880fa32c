package models

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Address 收货地址（计税与配送匹配使用）
type Address struct {
	Country    string `gorm:"type:varchar(8)" json:"country"`      // 国家代码
	State      string `gorm:"type:varchar(64)" json:"state"`       // 省/州代码
	City       string `gorm:"type:varchar(128)" json:"city"`       // 城市
	PostalCode string `gorm:"type:varchar(32)" json:"postal_code"` // 邮编
	Line1      string `gorm:"type:varchar(255)" json:"line1"`      // 详细地址
}

// Normalize 去除首尾空白，国家与省州代码统一大写
func (a Address) Normalize() Address {
	return Address{
		Country:    strings.ToUpper(strings.TrimSpace(a.Country)),
		State:      strings.ToUpper(strings.TrimSpace(a.State)),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Line1:      strings.TrimSpace(a.Line1),
	}
}

// HasCountry 是否已填写国家
func (a Address) HasCountry() bool {
	return strings.TrimSpace(a.Country) != ""
}

// Cart 购物车
type Cart struct {
	ID               uint             `gorm:"primarykey" json:"id"`                                                                                              // 主键
	UserID           *uint            `gorm:"index;uniqueIndex:idx_carts_active_user,where:status = 'active' AND deleted_at IS NULL" json:"user_id,omitempty"`   // 用户ID（与游客令牌二选一）
	GuestToken       *string          `gorm:"type:varchar(64);index;uniqueIndex:idx_carts_active_guest,where:status = 'active' AND deleted_at IS NULL" json:"-"` // 游客令牌（每个身份至多一个活跃购物车）
	Status           string           `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`                                                    // 状态（active/merged）
	Currency         string           `gorm:"type:varchar(10);not null;default:'PKR'" json:"currency"`                                                           // 币种
	Subtotal         Money            `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`                                                             // 商品小计
	DiscountTotal    Money            `gorm:"type:decimal(20,2);not null;default:0" json:"discount_total"`                                                       // 优惠金额
	ShippingTotal    Money            `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_total"`                                                       // 运费
	TaxTotal         Money            `gorm:"type:decimal(20,2);not null;default:0" json:"tax_total"`                                                            // 税费（仅外加税）
	Total            Money            `gorm:"type:decimal(20,2);not null;default:0" json:"total"`                                                                // 应付总额
	AppliedCode      string           `gorm:"type:varchar(64);not null;default:''" json:"applied_code"`                                                          // 已使用的优惠码
	CouponSnapshot   DiscountSnapshot `gorm:"type:text" json:"coupon_snapshot"`                                                                                  // 优惠规则快照
	ShippingMethodID *uint            `gorm:"index" json:"shipping_method_id,omitempty"`                                                                         // 已选配送方式
	ShipTo           Address          `gorm:"embedded;embeddedPrefix:ship_" json:"ship_to"`                                                                      // 收货地址
	LastActivityAt   time.Time        `gorm:"index" json:"last_activity_at"`                                                                                     // 最后活跃时间
	MergedIntoID     *uint            `gorm:"index" json:"merged_into_id,omitempty"`                                                                             // 合并目标购物车
	CreatedAt        time.Time        `gorm:"index" json:"created_at"`                                                                                           // 创建时间
	UpdatedAt        time.Time        `gorm:"index" json:"updated_at"`                                                                                           // 更新时间
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`                                                                                                    // 软删除时间

	Items []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// Validate 校验购物车归属：用户与游客令牌必须且只能有一个
func (c *Cart) Validate() error {
	hasUser := c.UserID != nil && *c.UserID != 0
	hasGuest := c.GuestToken != nil && strings.TrimSpace(*c.GuestToken) != ""
	if hasUser == hasGuest {
		return ErrCartOwnerInvalid
	}
	return nil
}

// IsGuest 是否游客购物车
func (c *Cart) IsGuest() bool {
	return c.UserID == nil || *c.UserID == 0
}

// NewUserCart 创建用户购物车
func NewUserCart(userID uint, currency string, now time.Time) *Cart {
	uid := userID
	return newCart(&uid, nil, currency, now)
}

// NewGuestCart 创建游客购物车
func NewGuestCart(token string, currency string, now time.Time) *Cart {
	t := strings.TrimSpace(token)
	return newCart(nil, &t, currency, now)
}

func newCart(userID *uint, guestToken *string, currency string, now time.Time) *Cart {
	return &Cart{
		UserID:         userID,
		GuestToken:     guestToken,
		Status:         constants.CartStatusActive,
		Currency:       strings.ToUpper(strings.TrimSpace(currency)),
		Subtotal:       ZeroMoney(),
		DiscountTotal:  ZeroMoney(),
		ShippingTotal:  ZeroMoney(),
		TaxTotal:       ZeroMoney(),
		Total:          ZeroMoney(),
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CartItem 购物车项
type CartItem struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                       // 主键
	CartID       uint           `gorm:"not null;index" json:"cart_id"`                              // 购物车ID
	ProductID    uint           `gorm:"not null;index" json:"product_id"`                           // 商品ID
	VariantID    *uint          `gorm:"index" json:"variant_id,omitempty"`                          // 规格ID
	Quantity     int            `gorm:"not null" json:"quantity"`                                   // 数量
	UnitPrice    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`    // 加购时单价快照
	LineSubtotal Money          `gorm:"type:decimal(20,2);not null;default:0" json:"line_subtotal"` // 行小计
	LineTotal    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"line_total"`    // 行合计
	Meta         JSON           `gorm:"type:json" json:"meta,omitempty"`                            // 附加信息
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// LineKey 返回 (商品, 规格) 合并键
func (i CartItem) LineKey() CartLineKey {
	key := CartLineKey{ProductID: i.ProductID}
	if i.VariantID != nil {
		key.VariantID = *i.VariantID
	}
	return key
}

// ComputeLine 按单价与数量计算行金额
func (i CartItem) ComputeLine() Money {
	return NewMoneyFromDecimal(i.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity))))
}

// CartLineKey 购物车行合并键
type CartLineKey struct {
	ProductID uint
	VariantID uint
}
