package service

import (
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

const defaultCleanupBatchSize = 200

// CleanupStaleGuestCarts 删除 before 之前不再活跃的游客购物车，返回删除数量
func (s *CartService) CleanupStaleGuestCarts(before time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = defaultCleanupBatchSize
	}
	var removed int64
	for {
		ids, err := s.cartRepo.ListStaleGuestCartIDs(before, batchSize)
		if err != nil {
			return removed, err
		}
		if len(ids) == 0 {
			break
		}
		var affected int64
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			n, err := s.cartRepo.WithTx(tx).DeleteStaleGuestCarts(ids, before)
			affected = n
			return err
		})
		if err != nil {
			return removed, err
		}
		removed += affected
		if len(ids) < batchSize {
			break
		}
	}
	if removed > 0 {
		logger.Infow("guest_carts_cleaned", "removed", removed, "before", before)
	}
	return removed, nil
}

// GuestCartCutoff 根据保留天数计算清理截止时间
func GuestCartCutoff(now time.Time, ttlDays int) time.Time {
	if ttlDays <= 0 {
		ttlDays = 30
	}
	return now.Add(-time.Duration(ttlDays) * 24 * time.Hour)
}
