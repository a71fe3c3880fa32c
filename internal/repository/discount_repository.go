package repository

import (
	"errors"
	"strings"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// DiscountRepository 优惠规则与优惠码数据访问接口
type DiscountRepository interface {
	GetByID(id uint) (*models.Discount, error)
	GetCodeByID(id uint) (*models.DiscountCode, error)
	GetCodeByNormalized(normalized string) (*models.DiscountCode, error)
	List(filter DiscountListFilter) ([]models.Discount, int64, error)
	Create(discount *models.Discount) error
	Update(discount *models.Discount) error
	Delete(id uint) error
	ListCodes(discountID uint) ([]models.DiscountCode, error)
	CreateCode(code *models.DiscountCode) error
	UpdateCode(code *models.DiscountCode) error
	DeleteCode(id uint) error
	WithTx(tx *gorm.DB) *GormDiscountRepository
}

// GormDiscountRepository GORM 实现
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository 创建优惠规则仓库
func NewDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountRepository) WithTx(tx *gorm.DB) *GormDiscountRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountRepository{db: tx}
}

// GetByID 根据 ID 获取优惠规则
func (r *GormDiscountRepository) GetByID(id uint) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.First(&discount, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

// GetCodeByID 根据 ID 获取优惠码
func (r *GormDiscountRepository) GetCodeByID(id uint) (*models.DiscountCode, error) {
	var code models.DiscountCode
	if err := r.db.First(&code, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// GetCodeByNormalized 根据规范化优惠码查找
func (r *GormDiscountRepository) GetCodeByNormalized(normalized string) (*models.DiscountCode, error) {
	var code models.DiscountCode
	if err := r.db.Where("normalized_code = ?", normalized).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// List 优惠规则列表
func (r *GormDiscountRepository) List(filter DiscountListFilter) ([]models.Discount, int64, error) {
	query := r.db.Model(&models.Discount{})

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		operator := likeOperatorByDialect(dbDialectName(r.db))
		query = query.Where(
			"name "+operator+" ? OR id IN (?)",
			like,
			r.db.Model(&models.DiscountCode{}).Select("discount_id").Where("normalized_code "+operator+" ?", strings.ToLower(like)),
		)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var discounts []models.Discount
	if err := query.Preload("Codes").Order("id desc").Find(&discounts).Error; err != nil {
		return nil, 0, err
	}
	return discounts, total, nil
}

// Create 创建优惠规则
func (r *GormDiscountRepository) Create(discount *models.Discount) error {
	active := discount.IsActive
	if err := createKeepingInactive(r.db, discount, active, "Codes"); err != nil {
		return err
	}
	discount.IsActive = active
	return nil
}

// Update 更新优惠规则
func (r *GormDiscountRepository) Update(discount *models.Discount) error {
	return r.db.Omit("Codes").Save(discount).Error
}

// Delete 删除优惠规则及其优惠码
func (r *GormDiscountRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	if err := r.db.Where("discount_id = ?", id).Delete(&models.DiscountCode{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Discount{}, id).Error
}

// ListCodes 获取优惠规则下的优惠码
func (r *GormDiscountRepository) ListCodes(discountID uint) ([]models.DiscountCode, error) {
	codes := make([]models.DiscountCode, 0)
	if err := r.db.Where("discount_id = ?", discountID).Order("id asc").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// CreateCode 创建优惠码
func (r *GormDiscountRepository) CreateCode(code *models.DiscountCode) error {
	active := code.IsActive
	if err := createKeepingInactive(r.db, code, active); err != nil {
		return err
	}
	code.IsActive = active
	return nil
}

// UpdateCode 更新优惠码
func (r *GormDiscountRepository) UpdateCode(code *models.DiscountCode) error {
	return r.db.Save(code).Error
}

// DeleteCode 删除优惠码
func (r *GormDiscountRepository) DeleteCode(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.DiscountCode{}, id).Error
}
