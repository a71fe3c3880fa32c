package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// TaxProfileRepository 税率配置数据访问接口
type TaxProfileRepository interface {
	ListActive() ([]models.TaxProfile, error)
	List(filter TaxProfileListFilter) ([]models.TaxProfile, int64, error)
	GetByID(id uint) (*models.TaxProfile, error)
	Create(profile *models.TaxProfile) error
	Update(profile *models.TaxProfile) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormTaxProfileRepository
}

// GormTaxProfileRepository GORM 实现
type GormTaxProfileRepository struct {
	db *gorm.DB
}

// NewTaxProfileRepository 创建税率配置仓库
func NewTaxProfileRepository(db *gorm.DB) *GormTaxProfileRepository {
	return &GormTaxProfileRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTaxProfileRepository) WithTx(tx *gorm.DB) *GormTaxProfileRepository {
	if tx == nil {
		return r
	}
	return &GormTaxProfileRepository{db: tx}
}

// ListActive 获取全部启用的税率配置，按优先级升序
func (r *GormTaxProfileRepository) ListActive() ([]models.TaxProfile, error) {
	var profiles []models.TaxProfile
	if err := r.db.Where("is_active = ?", true).
		Order("priority asc").
		Order("id asc").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// List 税率配置列表
func (r *GormTaxProfileRepository) List(filter TaxProfileListFilter) ([]models.TaxProfile, int64, error) {
	query := r.db.Model(&models.TaxProfile{})
	if filter.CountryCode != "" {
		query = query.Where("country_code = ?", filter.CountryCode)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var profiles []models.TaxProfile
	if err := query.Order("country_code asc").Order("priority asc").Order("id asc").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// GetByID 根据 ID 获取税率配置
func (r *GormTaxProfileRepository) GetByID(id uint) (*models.TaxProfile, error) {
	var profile models.TaxProfile
	if err := r.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Create 创建税率配置
func (r *GormTaxProfileRepository) Create(profile *models.TaxProfile) error {
	active := profile.IsActive
	if err := createKeepingInactive(r.db, profile, active); err != nil {
		return err
	}
	profile.IsActive = active
	return nil
}

// Update 更新税率配置
func (r *GormTaxProfileRepository) Update(profile *models.TaxProfile) error {
	return r.db.Save(profile).Error
}

// Delete 删除税率配置
func (r *GormTaxProfileRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.TaxProfile{}, id).Error
}
