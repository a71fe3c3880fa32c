package repository

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetByID(id uint) (*models.Cart, error)
	GetByIDForUpdate(id uint) (*models.Cart, error)
	FindActiveByUser(userID uint) (*models.Cart, error)
	FindActiveByGuestToken(token string) (*models.Cart, error)
	FindByGuestToken(token string) (*models.Cart, error)
	Create(cart *models.Cart) error
	UpdatePricing(cart *models.Cart) error
	UpdateState(cart *models.Cart) error
	MarkMerged(cartID, intoID uint, now time.Time) error
	ListItems(cartID uint) ([]models.CartItem, error)
	GetItem(cartID, itemID uint) (*models.CartItem, error)
	FindItemByKey(cartID uint, key models.CartLineKey) (*models.CartItem, error)
	CreateItem(item *models.CartItem) error
	UpdateItem(item *models.CartItem) error
	DeleteItem(cartID, itemID uint) error
	DeleteItemsByCart(cartID uint) error
	ListStaleGuestCartIDs(before time.Time, limit int) ([]uint, error)
	DeleteStaleGuestCarts(ids []uint, before time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetByID 根据 ID 获取购物车（含明细）
func (r *GormCartRepository) GetByID(id uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).First(&cart, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// GetByIDForUpdate 加行锁读取购物车（sqlite 忽略锁子句，写事务本身串行）
func (r *GormCartRepository) GetByIDForUpdate(id uint) (*models.Cart, error) {
	var cart models.Cart
	query := r.db
	if dbDialectName(r.db) != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&cart, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// FindActiveByUser 获取用户当前活跃购物车
func (r *GormCartRepository) FindActiveByUser(userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Where("user_id = ? AND status = ?", userID, constants.CartStatusActive).
		Order("id desc").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// FindActiveByGuestToken 获取游客当前活跃购物车
func (r *GormCartRepository) FindActiveByGuestToken(token string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Where("guest_token = ? AND status = ?", token, constants.CartStatusActive).
		Order("id desc").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// FindByGuestToken 获取游客令牌对应的最近购物车（不限状态）
func (r *GormCartRepository) FindByGuestToken(token string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Where("guest_token = ?", token).Order("id desc").First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// Create 创建购物车
func (r *GormCartRepository) Create(cart *models.Cart) error {
	return r.db.Create(cart).Error
}

// UpdatePricing 写回计价结果
func (r *GormCartRepository) UpdatePricing(cart *models.Cart) error {
	if cart == nil {
		return nil
	}
	updates := map[string]interface{}{
		"subtotal":         cart.Subtotal,
		"discount_total":   cart.DiscountTotal,
		"shipping_total":   cart.ShippingTotal,
		"tax_total":        cart.TaxTotal,
		"total":            cart.Total,
		"coupon_snapshot":  cart.CouponSnapshot,
		"last_activity_at": cart.LastActivityAt,
		"updated_at":       cart.UpdatedAt,
	}
	return r.db.Model(&models.Cart{ID: cart.ID}).Updates(updates).Error
}

// UpdateState 写回用户可修改的状态字段（优惠码、地址、配送方式）
func (r *GormCartRepository) UpdateState(cart *models.Cart) error {
	if cart == nil {
		return nil
	}
	updates := map[string]interface{}{
		"applied_code":       cart.AppliedCode,
		"shipping_method_id": cart.ShippingMethodID,
		"shipping_total":     cart.ShippingTotal,
		"ship_country":       cart.ShipTo.Country,
		"ship_state":         cart.ShipTo.State,
		"ship_city":          cart.ShipTo.City,
		"ship_postal_code":   cart.ShipTo.PostalCode,
		"ship_line1":         cart.ShipTo.Line1,
		"updated_at":         cart.UpdatedAt,
	}
	return r.db.Model(&models.Cart{ID: cart.ID}).Updates(updates).Error
}

// MarkMerged 标记游客购物车已合并
func (r *GormCartRepository) MarkMerged(cartID, intoID uint, now time.Time) error {
	updates := map[string]interface{}{
		"status":           constants.CartStatusMerged,
		"merged_into_id":   intoID,
		"subtotal":         models.ZeroMoney(),
		"discount_total":   models.ZeroMoney(),
		"shipping_total":   models.ZeroMoney(),
		"tax_total":        models.ZeroMoney(),
		"total":            models.ZeroMoney(),
		"last_activity_at": now,
		"updated_at":       now,
	}
	return r.db.Model(&models.Cart{ID: cartID}).Updates(updates).Error
}

// ListItems 获取购物车明细
func (r *GormCartRepository) ListItems(cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("cart_id = ?", cartID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem 获取购物车内的指定明细
func (r *GormCartRepository) GetItem(cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("cart_id = ? AND id = ?", cartID, itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindItemByKey 按 (商品, 规格) 查找明细
func (r *GormCartRepository) FindItemByKey(cartID uint, key models.CartLineKey) (*models.CartItem, error) {
	query := r.db.Where("cart_id = ? AND product_id = ?", cartID, key.ProductID)
	if key.VariantID == 0 {
		query = query.Where("variant_id IS NULL")
	} else {
		query = query.Where("variant_id = ?", key.VariantID)
	}
	var item models.CartItem
	if err := query.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// CreateItem 创建明细
func (r *GormCartRepository) CreateItem(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// UpdateItem 更新明细
func (r *GormCartRepository) UpdateItem(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	updates := map[string]interface{}{
		"quantity":      item.Quantity,
		"line_subtotal": item.LineSubtotal,
		"line_total":    item.LineTotal,
		"updated_at":    item.UpdatedAt,
	}
	return r.db.Model(&models.CartItem{ID: item.ID}).Updates(updates).Error
}

// DeleteItem 删除明细
func (r *GormCartRepository) DeleteItem(cartID, itemID uint) error {
	return r.db.Where("cart_id = ? AND id = ?", cartID, itemID).Delete(&models.CartItem{}).Error
}

// DeleteItemsByCart 清空购物车明细
func (r *GormCartRepository) DeleteItemsByCart(cartID uint) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// ListStaleGuestCartIDs 列出长期未活跃的游客购物车
func (r *GormCartRepository) ListStaleGuestCartIDs(before time.Time, limit int) ([]uint, error) {
	ids := make([]uint, 0)
	query := r.db.Model(&models.Cart{}).
		Where("guest_token IS NOT NULL AND user_id IS NULL").
		Where("last_activity_at < ?", before).
		Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteStaleGuestCarts 在事务内复核后删除游客购物车及其明细（软删除）
// 列表与删除之间重新活跃的购物车会被跳过
func (r *GormCartRepository) DeleteStaleGuestCarts(ids []uint, before time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := r.db.Model(&models.Cart{})
	if dbDialectName(r.db) != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	stale := make([]uint, 0, len(ids))
	if err := query.Where("id IN ?", ids).
		Where("guest_token IS NOT NULL AND user_id IS NULL").
		Where("last_activity_at < ?", before).
		Pluck("id", &stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := r.db.Where("cart_id IN ?", stale).Delete(&models.CartItem{}).Error; err != nil {
		return 0, err
	}
	result := r.db.Where("id IN ?", stale).Where("last_activity_at < ?", before).Delete(&models.Cart{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
