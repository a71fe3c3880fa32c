package service

import (
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartPricingService 购物车重算流水线：行金额 -> 小计 -> 优惠 -> 税费 -> 总额
type CartPricingService struct {
	cartRepo  repository.CartRepository
	discounts *DiscountResolver
	taxes     *TaxResolver
	now       func() time.Time
}

// NewCartPricingService 创建购物车计价服务
func NewCartPricingService(cartRepo repository.CartRepository, discounts *DiscountResolver, taxes *TaxResolver) *CartPricingService {
	return &CartPricingService{
		cartRepo:  cartRepo,
		discounts: discounts,
		taxes:     taxes,
		now:       time.Now,
	}
}

// SetClock 替换时钟
func (s *CartPricingService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Now 当前计价时间
func (s *CartPricingService) Now() time.Time {
	return s.now()
}

// Recalculate 在事务内重算购物车并写回；计价问题不报错，购物车不存在返回 ErrCartNotFound
func (s *CartPricingService) Recalculate(tx *gorm.DB, cartID uint) (*models.Cart, error) {
	cart, _, err := s.recalculate(tx, cartID)
	return cart, err
}

func (s *CartPricingService) recalculate(tx *gorm.DB, cartID uint) (*models.Cart, DiscountResult, error) {
	cartRepo := s.cartRepo.WithTx(tx)
	cart, err := cartRepo.GetByIDForUpdate(cartID)
	if err != nil {
		return nil, DiscountResult{}, err
	}
	if cart == nil {
		return nil, DiscountResult{}, ErrCartNotFound
	}
	now := s.now()

	items, err := cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, DiscountResult{}, err
	}
	subtotal := decimal.Zero
	for i := range items {
		line := items[i].ComputeLine()
		if !line.Decimal.Equal(items[i].LineSubtotal.Decimal) || !line.Decimal.Equal(items[i].LineTotal.Decimal) {
			items[i].LineSubtotal = line
			items[i].LineTotal = line
			items[i].UpdatedAt = now
			if err := cartRepo.UpdateItem(&items[i]); err != nil {
				return nil, DiscountResult{}, err
			}
		}
		subtotal = subtotal.Add(line.Decimal)
	}
	cart.Subtotal = models.NewMoneyFromDecimal(subtotal)
	shipping := cart.ShippingTotal.ClampNonNegative()
	cart.ShippingTotal = shipping

	discount := rejectDiscount("")
	if cart.AppliedCode != "" {
		pctx := NewPricingContext(OwnerOfCart(cart), now)
		discount = s.discounts.WithTx(tx).Resolve(pctx, DiscountInput{
			Code:          cart.AppliedCode,
			Subtotal:      cart.Subtotal,
			Items:         items,
			ShippingTotal: shipping,
		})
		if !discount.Applied() {
			logger.Infow("discount_resolve_rejected",
				"cart_id", cart.ID,
				"code", cart.AppliedCode,
				"reason", discount.RejectReason,
			)
		}
	}
	cart.DiscountTotal = discount.Amount.ClampNonNegative()
	cart.CouponSnapshot = discount.Snapshot

	base := models.NewMoneyFromDecimal(
		subtotal.Sub(cart.DiscountTotal.Decimal).Add(shipping.Decimal),
	).ClampNonNegative()
	tax, err := s.taxes.WithTx(tx).Resolve(base, cart.ShipTo)
	if err != nil {
		return nil, DiscountResult{}, err
	}
	cart.TaxTotal = tax.Additive

	cart.Total = models.NewMoneyFromDecimal(
		subtotal.Sub(cart.DiscountTotal.Decimal).Add(shipping.Decimal).Add(cart.TaxTotal.Decimal),
	).ClampNonNegative()
	cart.LastActivityAt = now
	cart.UpdatedAt = now

	if err := cartRepo.UpdatePricing(cart); err != nil {
		return nil, DiscountResult{}, err
	}
	cart.Items = items

	logger.Debugw("cart_recalculated",
		"cart_id", cart.ID,
		"subtotal", cart.Subtotal.String(),
		"discount_total", cart.DiscountTotal.String(),
		"shipping_total", cart.ShippingTotal.String(),
		"tax_total", cart.TaxTotal.String(),
		"total", cart.Total.String(),
	)
	return cart, discount, nil
}
