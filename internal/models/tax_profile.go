package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxProfile 税率配置
type TaxProfile struct {
	ID          uint            `gorm:"primarykey" json:"id"`                                   // 主键
	Name        string          `gorm:"not null" json:"name"`                                   // 名称
	CountryCode string          `gorm:"type:varchar(8);not null;index" json:"country_code"`     // 国家代码（必须匹配）
	StateCode   string          `gorm:"type:varchar(64);not null;default:''" json:"state_code"` // 省/州代码（精确匹配，可空）
	City        string          `gorm:"type:varchar(128);not null;default:''" json:"city"`      // 城市（子串匹配，可空）
	Rate        decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"rate"`      // 税率（百分比）
	Inclusive   bool            `gorm:"not null;default:false" json:"inclusive"`                // 是否价内税
	Priority    int             `gorm:"not null;default:0;index" json:"priority"`               // 优先级（升序）
	IsActive    bool            `gorm:"not null;default:true;index" json:"is_active"`           // 是否启用
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt   time.Time       `gorm:"index" json:"updated_at"`                                // 更新时间
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`                                         // 软删除时间
}

// TableName 指定表名
func (TaxProfile) TableName() string {
	return "tax_profiles"
}

// Validate 校验税率配置
func (p *TaxProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	p.CountryCode = strings.ToUpper(strings.TrimSpace(p.CountryCode))
	p.StateCode = strings.ToUpper(strings.TrimSpace(p.StateCode))
	p.City = strings.TrimSpace(p.City)
	if p.CountryCode == "" {
		return ErrCountryCodeRequired
	}
	if p.Rate.IsNegative() || p.Rate.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidTaxRate
	}
	return nil
}
