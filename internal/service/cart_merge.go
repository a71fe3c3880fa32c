package service

import (
	"context"
	"strings"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// MergeGuestCart 登录时将游客购物车并入用户购物车
//
// 相同 (商品, 规格) 的行累加数量，其余行连同单价与附加信息复制过去；游客购物车清空并标记为 merged。
// 对已合并或不存在的游客购物车重复调用不做任何修改，直接返回用户购物车。
func (s *CartService) MergeGuestCart(ctx context.Context, userID uint, guestToken string) (*models.Cart, error) {
	if userID == 0 {
		return nil, ErrCartForbidden
	}
	token := strings.TrimSpace(guestToken)
	if token == "" {
		return nil, ErrGuestTokenRequired
	}

	var (
		result  *models.Cart
		payload *queue.CartMergedPayload
	)
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		userCart, err := s.ensureUserCart(cartRepo, userID)
		if err != nil {
			return err
		}

		guest, err := cartRepo.FindActiveByGuestToken(token)
		if err != nil {
			return err
		}
		if guest == nil {
			result, err = cartRepo.GetByID(userCart.ID)
			return err
		}
		guest, err = cartRepo.GetByIDForUpdate(guest.ID)
		if err != nil {
			return err
		}
		if guest == nil {
			return ErrCartNotFound
		}

		guestItems, err := cartRepo.ListItems(guest.ID)
		if err != nil {
			return err
		}
		now := s.pricing.Now()
		mergedLines, copiedLines := 0, 0
		for _, item := range guestItems {
			existing, err := cartRepo.FindItemByKey(userCart.ID, item.LineKey())
			if err != nil {
				return err
			}
			if existing != nil {
				existing.Quantity += item.Quantity
				existing.LineSubtotal = existing.ComputeLine()
				existing.LineTotal = existing.LineSubtotal
				existing.UpdatedAt = now
				if err := cartRepo.UpdateItem(existing); err != nil {
					return err
				}
				mergedLines++
				continue
			}
			copied := &models.CartItem{
				CartID:    userCart.ID,
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Meta:      item.Meta.Clone(),
				CreatedAt: now,
				UpdatedAt: now,
			}
			copied.LineSubtotal = copied.ComputeLine()
			copied.LineTotal = copied.LineSubtotal
			if err := cartRepo.CreateItem(copied); err != nil {
				return err
			}
			copiedLines++
		}
		if err := cartRepo.DeleteItemsByCart(guest.ID); err != nil {
			return err
		}

		if inheritGuestState(userCart, guest) {
			userCart.UpdatedAt = now
			if err := cartRepo.UpdateState(userCart); err != nil {
				return err
			}
		}
		if err := cartRepo.MarkMerged(guest.ID, userCart.ID, now); err != nil {
			return err
		}

		result, err = s.pricing.Recalculate(tx, userCart.ID)
		if err != nil {
			return err
		}
		payload = &queue.CartMergedPayload{
			GuestCartID: guest.ID,
			UserCartID:  userCart.ID,
			UserID:      userID,
			MergedLines: mergedLines,
			CopiedLines: copiedLines,
			Total:       result.Total.String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if payload != nil {
		logger.Infow("cart_guest_merged",
			"guest_cart_id", payload.GuestCartID,
			"user_cart_id", payload.UserCartID,
			"user_id", userID,
			"merged_lines", payload.MergedLines,
			"copied_lines", payload.CopiedLines,
		)
		if qerr := s.queueClient.EnqueueCartMerged(*payload); qerr != nil {
			logger.Warnw("cart_merged_enqueue_failed", "user_cart_id", payload.UserCartID, "error", qerr)
		}
	}
	return result, nil
}

func (s *CartService) ensureUserCart(cartRepo repository.CartRepository, userID uint) (*models.Cart, error) {
	cart, err := cartRepo.FindActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cartRepo.GetByIDForUpdate(cart.ID)
	}
	cart = models.NewUserCart(userID, s.currency, s.pricing.Now())
	if err := cartRepo.Create(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// inheritGuestState 用户购物车缺少的优惠码、地址与配送方式从游客购物车继承
func inheritGuestState(userCart, guest *models.Cart) bool {
	changed := false
	if userCart.AppliedCode == "" && guest.AppliedCode != "" {
		userCart.AppliedCode = guest.AppliedCode
		changed = true
	}
	if !userCart.ShipTo.HasCountry() && guest.ShipTo.HasCountry() {
		userCart.ShipTo = guest.ShipTo
		changed = true
		if userCart.ShippingMethodID == nil && guest.ShippingMethodID != nil {
			methodID := *guest.ShippingMethodID
			userCart.ShippingMethodID = &methodID
			userCart.ShippingTotal = guest.ShippingTotal
		}
	}
	return changed
}
