package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository 目录只读视图（价格、库存、分类归属）
type CatalogRepository interface {
	GetProduct(id uint) (*models.Product, error)
	GetVariant(productID, variantID uint) (*models.ProductVariant, error)
	GetCategoryID(productID uint) (uint, bool, error)
	ListCategoryIDs(productIDs []uint) (map[uint]uint, error)
	CreateCategory(category *models.Category) error
	CreateProduct(product *models.Product) error
	CreateVariant(variant *models.ProductVariant) error
	WithTx(tx *gorm.DB) *GormCatalogRepository
}

// GormCatalogRepository GORM 实现
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录仓库
func NewCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCatalogRepository) WithTx(tx *gorm.DB) *GormCatalogRepository {
	if tx == nil {
		return r
	}
	return &GormCatalogRepository{db: tx}
}

// GetProduct 根据 ID 获取商品
func (r *GormCatalogRepository) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetVariant 获取商品下的指定规格
func (r *GormCatalogRepository) GetVariant(productID, variantID uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.Where("product_id = ? AND id = ?", productID, variantID).First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// GetCategoryID 获取商品所属分类，商品不存在时返回 false
func (r *GormCatalogRepository) GetCategoryID(productID uint) (uint, bool, error) {
	var categoryIDs []uint
	if err := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Limit(1).
		Pluck("category_id", &categoryIDs).Error; err != nil {
		return 0, false, err
	}
	if len(categoryIDs) == 0 {
		return 0, false, nil
	}
	return categoryIDs[0], true, nil
}

// ListCategoryIDs 批量获取商品分类归属
func (r *GormCatalogRepository) ListCategoryIDs(productIDs []uint) (map[uint]uint, error) {
	result := make(map[uint]uint, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		ID         uint
		CategoryID uint
	}
	if err := r.db.Model(&models.Product{}).
		Select("id", "category_id").
		Where("id IN ?", productIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row.CategoryID
	}
	return result, nil
}

// CreateCategory 创建分类
func (r *GormCatalogRepository) CreateCategory(category *models.Category) error {
	return r.db.Create(category).Error
}

// CreateProduct 创建商品
func (r *GormCatalogRepository) CreateProduct(product *models.Product) error {
	return r.db.Create(product).Error
}

// CreateVariant 创建规格
func (r *GormCatalogRepository) CreateVariant(variant *models.ProductVariant) error {
	return r.db.Create(variant).Error
}
