package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 商品分类
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`              // 主键
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`  // 唯一标识
	Name      string         `gorm:"not null" json:"name"`              // 名称
	SortOrder int            `gorm:"default:0;index" json:"sort_order"` // 排序权重
	CreatedAt time.Time      `gorm:"index" json:"created_at"`           // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// Product 商品（目录服务的只读视图）
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                      // 主键
	CategoryID    uint           `gorm:"not null;index" json:"category_id"`                         // 分类ID
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Title         string         `gorm:"not null" json:"title"`                                     // 标题
	PriceAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 价格（最小货币单位）
	PriceCurrency string         `gorm:"type:varchar(10);not null;default:'PKR'" json:"currency"`   // 币种
	InStock       bool           `gorm:"not null;default:true" json:"in_stock"`                     // 是否有货
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"` // 规格列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// ProductVariant 商品规格
type ProductVariant struct {
	ID          uint           `gorm:"primarykey" json:"id"`                             // 主键
	ProductID   uint           `gorm:"not null;index" json:"product_id"`                 // 商品ID
	SKU         string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"sku"` // SKU 编码
	PriceAmount NullMoney      `gorm:"type:decimal(20,2)" json:"price_amount"`           // 规格价（为空时沿用商品价）
	InStock     bool           `gorm:"not null;default:true" json:"in_stock"`            // 是否有货
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`              // 是否启用
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                       // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                   // 软删除时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}
