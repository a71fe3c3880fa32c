package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// ShippingRepository 配送区域、方式与阶梯运费数据访问接口
type ShippingRepository interface {
	ListActiveZones() ([]models.ShippingZone, error)
	ListActiveMethods() ([]models.ShippingMethod, error)
	ListZones() ([]models.ShippingZone, error)
	ListMethods() ([]models.ShippingMethod, error)
	GetZoneByID(id uint) (*models.ShippingZone, error)
	GetMethodByID(id uint) (*models.ShippingMethod, error)
	GetRateByID(id uint) (*models.ShippingRate, error)
	CountMethodsByZone(zoneID uint) (int64, error)
	CreateZone(zone *models.ShippingZone) error
	UpdateZone(zone *models.ShippingZone) error
	DeleteZone(id uint) error
	CreateMethod(method *models.ShippingMethod) error
	UpdateMethod(method *models.ShippingMethod) error
	DeleteMethod(id uint) error
	CreateRate(rate *models.ShippingRate) error
	UpdateRate(rate *models.ShippingRate) error
	DeleteRate(id uint) error
	WithTx(tx *gorm.DB) *GormShippingRepository
}

// GormShippingRepository GORM 实现
type GormShippingRepository struct {
	db *gorm.DB
}

// NewShippingRepository 创建配送仓库
func NewShippingRepository(db *gorm.DB) *GormShippingRepository {
	return &GormShippingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShippingRepository) WithTx(tx *gorm.DB) *GormShippingRepository {
	if tx == nil {
		return r
	}
	return &GormShippingRepository{db: tx}
}

// ListActiveZones 获取启用的配送区域
func (r *GormShippingRepository) ListActiveZones() ([]models.ShippingZone, error) {
	var zones []models.ShippingZone
	if err := r.db.Where("is_active = ?", true).Order("id asc").Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

// ListActiveMethods 获取启用的配送方式（仅预加载启用的阶梯）
func (r *GormShippingRepository) ListActiveMethods() ([]models.ShippingMethod, error) {
	var methods []models.ShippingMethod
	err := r.db.Preload("Rates", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true).Order("id asc")
	}).Where("is_active = ?", true).
		Order("sort_order asc").
		Order("id asc").
		Find(&methods).Error
	if err != nil {
		return nil, err
	}
	return methods, nil
}

// ListZones 获取全部配送区域
func (r *GormShippingRepository) ListZones() ([]models.ShippingZone, error) {
	zones := make([]models.ShippingZone, 0)
	if err := r.db.Order("id asc").Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

// ListMethods 获取全部配送方式（含全部阶梯）
func (r *GormShippingRepository) ListMethods() ([]models.ShippingMethod, error) {
	methods := make([]models.ShippingMethod, 0)
	err := r.db.Preload("Rates", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Order("sort_order asc").Order("id asc").Find(&methods).Error
	if err != nil {
		return nil, err
	}
	return methods, nil
}

// GetZoneByID 根据 ID 获取配送区域
func (r *GormShippingRepository) GetZoneByID(id uint) (*models.ShippingZone, error) {
	var zone models.ShippingZone
	if err := r.db.First(&zone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &zone, nil
}

// GetMethodByID 根据 ID 获取配送方式
func (r *GormShippingRepository) GetMethodByID(id uint) (*models.ShippingMethod, error) {
	var method models.ShippingMethod
	if err := r.db.Preload("Rates", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).First(&method, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

// GetRateByID 根据 ID 获取阶梯运费
func (r *GormShippingRepository) GetRateByID(id uint) (*models.ShippingRate, error) {
	var rate models.ShippingRate
	if err := r.db.First(&rate, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

// CountMethodsByZone 统计引用该区域的配送方式数量
func (r *GormShippingRepository) CountMethodsByZone(zoneID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.ShippingMethod{}).Where("zone_id = ?", zoneID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateZone 创建配送区域
func (r *GormShippingRepository) CreateZone(zone *models.ShippingZone) error {
	active := zone.IsActive
	if err := createKeepingInactive(r.db, zone, active); err != nil {
		return err
	}
	zone.IsActive = active
	return nil
}

// UpdateZone 更新配送区域
func (r *GormShippingRepository) UpdateZone(zone *models.ShippingZone) error {
	return r.db.Save(zone).Error
}

// DeleteZone 删除配送区域
func (r *GormShippingRepository) DeleteZone(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.ShippingZone{}, id).Error
}

// CreateMethod 创建配送方式
func (r *GormShippingRepository) CreateMethod(method *models.ShippingMethod) error {
	active := method.IsActive
	if err := createKeepingInactive(r.db, method, active, "Rates"); err != nil {
		return err
	}
	method.IsActive = active
	return nil
}

// UpdateMethod 更新配送方式
func (r *GormShippingRepository) UpdateMethod(method *models.ShippingMethod) error {
	return r.db.Omit("Rates").Save(method).Error
}

// DeleteMethod 删除配送方式及其阶梯
func (r *GormShippingRepository) DeleteMethod(id uint) error {
	if id == 0 {
		return nil
	}
	if err := r.db.Where("method_id = ?", id).Delete(&models.ShippingRate{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.ShippingMethod{}, id).Error
}

// CreateRate 创建阶梯运费
func (r *GormShippingRepository) CreateRate(rate *models.ShippingRate) error {
	active := rate.IsActive
	if err := createKeepingInactive(r.db, rate, active); err != nil {
		return err
	}
	rate.IsActive = active
	return nil
}

// UpdateRate 更新阶梯运费
func (r *GormShippingRepository) UpdateRate(rate *models.ShippingRate) error {
	return r.db.Save(rate).Error
}

// DeleteRate 删除阶梯运费
func (r *GormShippingRepository) DeleteRate(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.ShippingRate{}, id).Error
}
