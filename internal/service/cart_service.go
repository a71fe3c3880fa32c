package service

import (
	"errors"
	"strings"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartService 购物车服务，所有修改操作在单个事务内完成并以重算收尾
type CartService struct {
	cartRepo    repository.CartRepository
	catalogRepo repository.CatalogRepository
	pricing     *CartPricingService
	shipping    *ShippingResolver
	taxes       *TaxResolver
	queueClient *queue.Client
	currency    string
}

// NewCartService 创建购物车服务
func NewCartService(
	cfg *config.Config,
	cartRepo repository.CartRepository,
	catalogRepo repository.CatalogRepository,
	pricing *CartPricingService,
	shipping *ShippingResolver,
	taxes *TaxResolver,
	queueClient *queue.Client,
) *CartService {
	currency := constants.DefaultCurrency
	if cfg != nil && strings.TrimSpace(cfg.Cart.DefaultCurrency) != "" {
		currency = strings.ToUpper(strings.TrimSpace(cfg.Cart.DefaultCurrency))
	}
	return &CartService{
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
		pricing:     pricing,
		shipping:    shipping,
		taxes:       taxes,
		queueClient: queueClient,
		currency:    currency,
	}
}

// AddCartItemInput 加购参数
type AddCartItemInput struct {
	ProductID uint
	VariantID *uint
	Quantity  int
	Meta      models.JSON
}

// CheckoutQuote 结算报价
type CheckoutQuote struct {
	Cart     *models.Cart   `json:"cart"`
	Shipping *ShippingQuote `json:"shipping,omitempty"`
	Tax      TaxBreakdown   `json:"tax"`
	Ready    bool           `json:"ready"`
	Issues   []string       `json:"issues"`
}

// NewGuestToken 生成游客令牌
func NewGuestToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GetOrCreate 获取身份对应的活跃购物车，不存在时创建
func (s *CartService) GetOrCreate(owner CartOwner) (*models.Cart, bool, error) {
	if owner.IsZero() {
		return nil, false, ErrGuestTokenRequired
	}
	var (
		cart         *models.Cart
		created      bool
		createFailed bool
	)
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		existing, err := s.findActive(cartRepo, owner)
		if err != nil {
			return err
		}
		if existing != nil {
			cart = existing
			return nil
		}
		now := s.pricing.Now()
		if owner.UserID != 0 {
			cart = models.NewUserCart(owner.UserID, s.currency, now)
		} else {
			cart = models.NewGuestCart(owner.GuestToken, s.currency, now)
		}
		if err := cart.Validate(); err != nil {
			return err
		}
		if err := cartRepo.Create(cart); err != nil {
			createFailed = true
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		if !createFailed {
			return nil, false, err
		}
		// 并发首次请求撞上活跃购物车唯一索引，改用对方已创建的购物车
		winner, ferr := s.findActive(s.cartRepo, owner)
		if ferr != nil || winner == nil {
			return nil, false, err
		}
		logger.Infow("cart_create_conflict_resolved", "cart_id", winner.ID, "user_id", owner.UserID, "guest", owner.IsGuest())
		cart, created = winner, false
	}
	full, err := s.cartRepo.GetByID(cart.ID)
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Infow("cart_created", "cart_id", full.ID, "user_id", owner.UserID, "guest", owner.IsGuest())
	}
	return full, created, nil
}

// Get 获取购物车详情
func (s *CartService) Get(owner CartOwner, cartID uint) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	if !owner.Owns(cart) {
		return nil, ErrCartForbidden
	}
	return cart, nil
}

// AddItem 加购；同一 (商品, 规格) 累加数量，单价沿用首次加购时的快照
func (s *CartService) AddItem(owner CartOwner, cartID uint, input AddCartItemInput) (*models.Cart, error) {
	if input.ProductID == 0 || input.Quantity < 1 {
		return nil, ErrInvalidCartItem
	}
	var result *models.Cart
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockOwnedCart(tx, owner, cartID)
		if err != nil {
			return err
		}
		unitPrice, err := s.resolveUnitPrice(tx, cart, input)
		if err != nil {
			return err
		}
		cartRepo := s.cartRepo.WithTx(tx)
		key := models.CartLineKey{ProductID: input.ProductID}
		if input.VariantID != nil {
			key.VariantID = *input.VariantID
		}
		now := s.pricing.Now()
		existing, err := cartRepo.FindItemByKey(cart.ID, key)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Quantity += input.Quantity
			existing.LineSubtotal = existing.ComputeLine()
			existing.LineTotal = existing.LineSubtotal
			existing.UpdatedAt = now
			if err := cartRepo.UpdateItem(existing); err != nil {
				return err
			}
		} else {
			item := &models.CartItem{
				CartID:    cart.ID,
				ProductID: input.ProductID,
				VariantID: input.VariantID,
				Quantity:  input.Quantity,
				UnitPrice: unitPrice,
				Meta:      input.Meta,
				CreatedAt: now,
				UpdatedAt: now,
			}
			item.LineSubtotal = item.ComputeLine()
			item.LineTotal = item.LineSubtotal
			if err := cartRepo.CreateItem(item); err != nil {
				return err
			}
		}
		result, err = s.pricing.Recalculate(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateItem 修改数量，数量小于等于 0 时删除该行
func (s *CartService) UpdateItem(owner CartOwner, cartID, itemID uint, quantity int) (*models.Cart, error) {
	var result *models.Cart
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockOwnedCart(tx, owner, cartID)
		if err != nil {
			return err
		}
		cartRepo := s.cartRepo.WithTx(tx)
		item, err := cartRepo.GetItem(cart.ID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrCartItemNotFound
		}
		if quantity <= 0 {
			if err := cartRepo.DeleteItem(cart.ID, item.ID); err != nil {
				return err
			}
		} else {
			item.Quantity = quantity
			item.LineSubtotal = item.ComputeLine()
			item.LineTotal = item.LineSubtotal
			item.UpdatedAt = s.pricing.Now()
			if err := cartRepo.UpdateItem(item); err != nil {
				return err
			}
		}
		result, err = s.pricing.Recalculate(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem 删除购物车行
func (s *CartService) RemoveItem(owner CartOwner, cartID, itemID uint) (*models.Cart, error) {
	var result *models.Cart
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockOwnedCart(tx, owner, cartID)
		if err != nil {
			return err
		}
		cartRepo := s.cartRepo.WithTx(tx)
		item, err := cartRepo.GetItem(cart.ID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrCartItemNotFound
		}
		if err := cartRepo.DeleteItem(cart.ID, item.ID); err != nil {
			return err
		}
		result, err = s.pricing.Recalculate(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyCode 显式使用优惠码：重算后优惠为 0 时整体回滚并返回拒绝原因
func (s *CartService) ApplyCode(owner CartOwner, cartID uint, code string) (*models.Cart, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, &DiscountRejection{Reason: constants.DiscountRejectNoCode}
	}
	var (
		result *models.Cart
		reason string
	)
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockOwnedCart(tx, owner, cartID)
		if err != nil {
			return err
		}
		cart.AppliedCode = trimmed
		cart.UpdatedAt = s.pricing.Now()
		if err := s.cartRepo.WithTx(tx).UpdateState(cart); err != nil {
			return err
		}
		priced, discount, err := s.pricing.recalculate(tx, cart.ID)
		if err != nil {
			return err
		}
		if !priced.DiscountTotal.IsPositive() {
			reason = discount.RejectReason
			if reason == constants.DiscountRejectCodeNotFound {
				return ErrDiscountCodeNotFound
			}
			return &DiscountRejection{Reason: reason}
		}
		result = priced
		return nil
	})
	if err != nil {
		if reason != "" {
			logger.Infow("cart_discount_code_rejected", "cart_id", cartID, "code", trimmed, "reason", reason)
			if qerr := s.queueClient.EnqueueCartCodeRejected(queue.CartCodeRejectedPayload{
				CartID: cartID,
				UserID: owner.UserID,
				Code:   trimmed,
				Reason: reason,
			}); qerr != nil {
				logger.Warnw("cart_code_rejected_enqueue_failed", "cart_id", cartID, "error", qerr)
			}
		}
		return nil, err
	}
	logger.Infow("cart_discount_code_applied",
		"cart_id", result.ID,
		"code", trimmed,
		"discount_total", result.DiscountTotal.String(),
	)
	return result, nil
}

// ClearCode 移除优惠码
func (s *CartService) ClearCode(owner CartOwner, cartID uint) (*models.Cart, error) {
	var result *models.Cart
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockOwnedCart(tx, owner, cartID)
		if err != nil {
			return err
		}
		cart.AppliedCode = ""
		cart.UpdatedAt = s.pricing.Now()
		if err := s.cartRepo.WithTx(tx).UpdateState(cart); err != nil {
			return err
		}
		result, err = s.pricing.Recalculate(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetAddress 更新收货地址；已选配送方式可能不再可用，因此一并清除
func (s *CartService) SetAddress(owner CartOwner, cartID uint, address models.Address) (*models.Cart, error) {
	normalized := address.Normalize()
	if !normalized.HasCountry() {
		return nil, ErrInvalidAddress
	}
	var result *models.Cart
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockOwnedCart(tx, owner, cartID)
		if err != nil {
			return err
		}
		cart.ShipTo = normalized
		cart.ShippingMethodID = nil
		cart.ShippingTotal = models.ZeroMoney()
		cart.UpdatedAt = s.pricing.Now()
		if err := s.cartRepo.WithTx(tx).UpdateState(cart); err != nil {
			return err
		}
		result, err = s.pricing.Recalculate(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ShippingOptions 返回购物车当前地址与小计下可选的配送方式
func (s *CartService) ShippingOptions(owner CartOwner, cartID uint) ([]ShippingQuote, error) {
	cart, err := s.Get(owner, cartID)
	if err != nil {
		return nil, err
	}
	return s.shipping.Quote(cart.ShipTo, cart.Subtotal)
}

// SelectShippingMethod 选择配送方式，校验与报价共用同一路径
func (s *CartService) SelectShippingMethod(owner CartOwner, cartID, methodID uint) (*models.Cart, error) {
	if methodID == 0 {
		return nil, ErrShippingMethodNotFound
	}
	var result *models.Cart
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockOwnedCart(tx, owner, cartID)
		if err != nil {
			return err
		}
		quote, err := s.shipping.WithTx(tx).ValidateMethod(cart.ShipTo, cart.Subtotal, methodID)
		if err != nil {
			return err
		}
		id := quote.MethodID
		cart.ShippingMethodID = &id
		cart.ShippingTotal = quote.Amount
		cart.UpdatedAt = s.pricing.Now()
		if err := s.cartRepo.WithTx(tx).UpdateState(cart); err != nil {
			return err
		}
		result, err = s.pricing.Recalculate(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CheckoutQuote 结算前复核：重新校验已选配送方式，运费档位变化时刷新，失效时清除
func (s *CartService) CheckoutQuote(owner CartOwner, cartID uint) (*CheckoutQuote, error) {
	quote := &CheckoutQuote{Issues: []string{}}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockOwnedCart(tx, owner, cartID)
		if err != nil {
			return err
		}
		cartRepo := s.cartRepo.WithTx(tx)
		// 先重算以获得最新小计，再按小计复核运费档位
		priced, err := s.pricing.Recalculate(tx, cart.ID)
		if err != nil {
			return err
		}
		if priced.ShippingMethodID != nil {
			selected, verr := s.shipping.WithTx(tx).ValidateMethod(priced.ShipTo, priced.Subtotal, *priced.ShippingMethodID)
			switch {
			case verr == nil:
				quote.Shipping = selected
				if !selected.Amount.Decimal.Equal(priced.ShippingTotal.Decimal) {
					priced.ShippingTotal = selected.Amount
					priced.UpdatedAt = s.pricing.Now()
					if err := cartRepo.UpdateState(priced); err != nil {
						return err
					}
					if priced, err = s.pricing.Recalculate(tx, cart.ID); err != nil {
						return err
					}
				}
			case errors.Is(verr, ErrShippingMethodUnavailable), errors.Is(verr, ErrShippingMethodNotFound):
				logger.Infow("cart_shipping_method_invalidated", "cart_id", cart.ID, "method_id", *priced.ShippingMethodID)
				priced.ShippingMethodID = nil
				priced.ShippingTotal = models.ZeroMoney()
				priced.UpdatedAt = s.pricing.Now()
				if err := cartRepo.UpdateState(priced); err != nil {
					return err
				}
				if priced, err = s.pricing.Recalculate(tx, cart.ID); err != nil {
					return err
				}
				quote.Issues = append(quote.Issues, "shipping_method_unavailable")
			default:
				return verr
			}
		}

		base := models.NewMoneyFromDecimal(
			priced.Subtotal.Decimal.Sub(priced.DiscountTotal.Decimal).Add(priced.ShippingTotal.Decimal),
		).ClampNonNegative()
		tax, err := s.taxes.WithTx(tx).Resolve(base, priced.ShipTo)
		if err != nil {
			return err
		}
		quote.Tax = tax
		quote.Cart = priced
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(quote.Cart.Items) == 0 {
		quote.Issues = append(quote.Issues, "cart_empty")
	}
	if !quote.Cart.ShipTo.HasCountry() {
		quote.Issues = append(quote.Issues, "address_missing")
	}
	if quote.Cart.ShippingMethodID == nil && !containsString(quote.Issues, "shipping_method_unavailable") {
		quote.Issues = append(quote.Issues, "shipping_method_missing")
	}
	quote.Ready = len(quote.Issues) == 0
	return quote, nil
}

func (s *CartService) findActive(cartRepo repository.CartRepository, owner CartOwner) (*models.Cart, error) {
	if owner.UserID != 0 {
		return cartRepo.FindActiveByUser(owner.UserID)
	}
	return cartRepo.FindActiveByGuestToken(strings.TrimSpace(owner.GuestToken))
}

// lockOwnedCart 加锁读取购物车并校验归属与状态
func (s *CartService) lockOwnedCart(tx *gorm.DB, owner CartOwner, cartID uint) (*models.Cart, error) {
	cart, err := s.cartRepo.WithTx(tx).GetByIDForUpdate(cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	if !owner.Owns(cart) {
		return nil, ErrCartForbidden
	}
	if cart.Status != constants.CartStatusActive {
		return nil, ErrCartInactive
	}
	return cart, nil
}

// resolveUnitPrice 查询目录价格与库存，规格价优先
func (s *CartService) resolveUnitPrice(tx *gorm.DB, cart *models.Cart, input AddCartItemInput) (models.Money, error) {
	catalogRepo := s.catalogRepo.WithTx(tx)
	product, err := catalogRepo.GetProduct(input.ProductID)
	if err != nil {
		return models.ZeroMoney(), err
	}
	if product == nil || !product.IsActive {
		return models.ZeroMoney(), ErrProductNotAvailable
	}
	if product.PriceCurrency != "" && !strings.EqualFold(product.PriceCurrency, cart.Currency) {
		return models.ZeroMoney(), ErrProductNotAvailable
	}
	price := product.PriceAmount
	inStock := product.InStock
	if input.VariantID != nil {
		variant, err := catalogRepo.GetVariant(product.ID, *input.VariantID)
		if err != nil {
			return models.ZeroMoney(), err
		}
		if variant == nil || !variant.IsActive {
			return models.ZeroMoney(), ErrProductNotAvailable
		}
		if override, ok := variant.PriceAmount.Get(); ok {
			price = override
		}
		inStock = variant.InStock
	}
	if !inStock {
		return models.ZeroMoney(), ErrProductOutOfStock
	}
	return price.ClampNonNegative(), nil
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
