package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ShippingZone 配送区域，空列表表示该维度不限制
type ShippingZone struct {
	ID        uint           `gorm:"primarykey" json:"id"`                         // 主键
	Name      string         `gorm:"not null" json:"name"`                         // 名称
	Countries StringArray    `gorm:"type:text" json:"countries"`                   // 国家代码列表
	States    StringArray    `gorm:"type:text" json:"states"`                      // 省/州代码列表
	Cities    StringArray    `gorm:"type:text" json:"cities"`                      // 城市匹配片段列表
	IsActive  bool           `gorm:"not null;default:true;index" json:"is_active"` // 是否启用
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (ShippingZone) TableName() string {
	return "shipping_zones"
}

// Validate 校验配送区域
func (z *ShippingZone) Validate() error {
	if strings.TrimSpace(z.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// ShippingMethod 配送方式，ZoneID 为空表示全局可用
type ShippingMethod struct {
	ID        uint           `gorm:"primarykey" json:"id"`                         // 主键
	ZoneID    *uint          `gorm:"index" json:"zone_id,omitempty"`               // 配送区域ID
	Name      string         `gorm:"not null" json:"name"`                         // 名称
	FlatRate  NullMoney      `gorm:"type:decimal(20,2)" json:"flat_rate"`          // 固定运费
	FreeOver  NullMoney      `gorm:"type:decimal(20,2)" json:"free_over"`          // 满额包邮门槛
	SortOrder int            `gorm:"not null;default:0;index" json:"sort_order"`   // 排序
	IsActive  bool           `gorm:"not null;default:true;index" json:"is_active"` // 是否启用
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间

	Rates []ShippingRate `gorm:"foreignKey:MethodID" json:"rates,omitempty"` // 阶梯运费
}

// TableName 指定表名
func (ShippingMethod) TableName() string {
	return "shipping_methods"
}

// Validate 校验配送方式
func (m *ShippingMethod) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrNameRequired
	}
	if m.FlatRate.IsNegative() {
		return ErrInvalidShippingRate
	}
	if m.FreeOver.IsNegative() {
		return ErrInvalidShippingRate
	}
	return nil
}

// ShippingRate 阶梯运费（按小计区间）
type ShippingRate struct {
	ID          uint           `gorm:"primarykey" json:"id"`                              // 主键
	MethodID    uint           `gorm:"not null;index" json:"method_id"`                   // 配送方式ID
	MinSubtotal NullMoney      `gorm:"type:decimal(20,2)" json:"min_subtotal"`            // 区间下限（含）
	MaxSubtotal NullMoney      `gorm:"type:decimal(20,2)" json:"max_subtotal"`            // 区间上限（含）
	Rate        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"rate"` // 运费
	IsActive    bool           `gorm:"not null;default:true;index" json:"is_active"`      // 是否启用
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (ShippingRate) TableName() string {
	return "shipping_rates"
}

// Validate 校验阶梯运费
func (r *ShippingRate) Validate() error {
	if r.MethodID == 0 {
		return ErrInvalidShippingRate
	}
	if r.Rate.Decimal.IsNegative() {
		return ErrInvalidShippingRate
	}
	if r.MinSubtotal.Valid && r.MaxSubtotal.Valid && r.MinSubtotal.Decimal.GreaterThan(r.MaxSubtotal.Decimal) {
		return ErrInvalidSubtotalRange
	}
	return nil
}

// Contains 判断小计是否落在区间内（两端可为空）
func (r ShippingRate) Contains(subtotal Money) bool {
	if r.MinSubtotal.Valid && subtotal.Decimal.LessThan(r.MinSubtotal.Decimal) {
		return false
	}
	if r.MaxSubtotal.Valid && subtotal.Decimal.GreaterThan(r.MaxSubtotal.Decimal) {
		return false
	}
	return true
}
