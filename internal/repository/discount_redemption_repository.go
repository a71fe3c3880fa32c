package repository

import (
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// DiscountRedemptionRepository 优惠使用记录数据访问接口
type DiscountRedemptionRepository interface {
	Create(redemption *models.DiscountRedemption) error
	CountByDiscount(discountID uint) (int64, error)
	CountByUser(discountID, userID uint) (int64, error)
	CountByGuestToken(discountID uint, token string) (int64, error)
	List(filter RedemptionListFilter) ([]models.DiscountRedemption, int64, error)
	WithTx(tx *gorm.DB) *GormDiscountRedemptionRepository
}

// GormDiscountRedemptionRepository GORM 实现
type GormDiscountRedemptionRepository struct {
	db *gorm.DB
}

// NewDiscountRedemptionRepository 创建优惠使用记录仓库
func NewDiscountRedemptionRepository(db *gorm.DB) *GormDiscountRedemptionRepository {
	return &GormDiscountRedemptionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountRedemptionRepository) WithTx(tx *gorm.DB) *GormDiscountRedemptionRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountRedemptionRepository{db: tx}
}

// Create 写入使用记录
func (r *GormDiscountRedemptionRepository) Create(redemption *models.DiscountRedemption) error {
	return r.db.Create(redemption).Error
}

// CountByDiscount 统计优惠规则总使用次数
func (r *GormDiscountRedemptionRepository) CountByDiscount(discountID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.DiscountRedemption{}).
		Where("discount_id = ?", discountID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByUser 统计用户使用次数
func (r *GormDiscountRedemptionRepository) CountByUser(discountID, userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.DiscountRedemption{}).
		Where("discount_id = ? AND user_id = ?", discountID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByGuestToken 统计游客使用次数
func (r *GormDiscountRedemptionRepository) CountByGuestToken(discountID uint, token string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.DiscountRedemption{}).
		Where("discount_id = ? AND guest_token = ?", discountID, token).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List 使用记录列表
func (r *GormDiscountRedemptionRepository) List(filter RedemptionListFilter) ([]models.DiscountRedemption, int64, error) {
	query := r.db.Model(&models.DiscountRedemption{})
	if filter.DiscountID != 0 {
		query = query.Where("discount_id = ?", filter.DiscountID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderRef != "" {
		query = query.Where("order_ref = ?", filter.OrderRef)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var redemptions []models.DiscountRedemption
	if err := query.Order("id desc").Find(&redemptions).Error; err != nil {
		return nil, 0, err
	}
	return redemptions, total, nil
}
