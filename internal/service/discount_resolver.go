package service

import (
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountInput 优惠解析输入
type DiscountInput struct {
	Code          string
	Subtotal      models.Money
	Items         []models.CartItem
	ShippingTotal models.Money
}

// DiscountResult 优惠解析结果，未命中时金额为 0 且快照为空
type DiscountResult struct {
	Amount           models.Money
	Snapshot         models.DiscountSnapshot
	EligibleSubtotal models.Money
	RejectReason     string
}

// Applied 是否产生了有效优惠
func (r DiscountResult) Applied() bool {
	return r.RejectReason == "" && r.Amount.IsPositive()
}

func rejectDiscount(reason string) DiscountResult {
	return DiscountResult{
		Amount:           models.ZeroMoney(),
		EligibleSubtotal: models.ZeroMoney(),
		RejectReason:     reason,
	}
}

// DiscountResolver 优惠码解析，所有失败路径均返回 0 而不是错误
type DiscountResolver struct {
	discountRepo   repository.DiscountRepository
	redemptionRepo repository.DiscountRedemptionRepository
	catalogRepo    repository.CatalogRepository
}

// NewDiscountResolver 创建优惠解析器
func NewDiscountResolver(
	discountRepo repository.DiscountRepository,
	redemptionRepo repository.DiscountRedemptionRepository,
	catalogRepo repository.CatalogRepository,
) *DiscountResolver {
	return &DiscountResolver{
		discountRepo:   discountRepo,
		redemptionRepo: redemptionRepo,
		catalogRepo:    catalogRepo,
	}
}

// WithTx 绑定事务
func (r *DiscountResolver) WithTx(tx *gorm.DB) *DiscountResolver {
	if tx == nil {
		return r
	}
	return &DiscountResolver{
		discountRepo:   r.discountRepo.WithTx(tx),
		redemptionRepo: r.redemptionRepo.WithTx(tx),
		catalogRepo:    r.catalogRepo.WithTx(tx),
	}
}

// Resolve 按固定顺序校验优惠码并计算优惠金额
func (r *DiscountResolver) Resolve(pctx PricingContext, input DiscountInput) DiscountResult {
	normalized := models.NormalizeDiscountCode(input.Code)
	if normalized == "" {
		return rejectDiscount(constants.DiscountRejectNoCode)
	}

	code, err := r.discountRepo.GetCodeByNormalized(normalized)
	if err != nil {
		return r.lookupFailed("discount_code_lookup_failed", normalized, err)
	}
	if code == nil {
		return rejectDiscount(constants.DiscountRejectCodeNotFound)
	}
	if !code.IsActive {
		return rejectDiscount(constants.DiscountRejectCodeInactive)
	}

	discount, err := r.discountRepo.GetByID(code.DiscountID)
	if err != nil {
		return r.lookupFailed("discount_lookup_failed", normalized, err)
	}
	if discount == nil {
		return rejectDiscount(constants.DiscountRejectDiscountNotFound)
	}
	if !discount.IsActive {
		return rejectDiscount(constants.DiscountRejectDiscountInactive)
	}

	if discount.StartsAt != nil && pctx.Now.Before(*discount.StartsAt) {
		return rejectDiscount(constants.DiscountRejectNotStarted)
	}
	if discount.EndsAt != nil && pctx.Now.After(*discount.EndsAt) {
		return rejectDiscount(constants.DiscountRejectExpired)
	}

	filter := decodeEligibility(discount.Eligibility)
	eligible, matched, err := r.eligibleSubtotal(filter, input)
	if err != nil {
		return r.lookupFailed("discount_category_lookup_failed", normalized, err)
	}
	if !matched {
		return rejectDiscount(constants.DiscountRejectNoEligibleItems)
	}

	if minSubtotal, ok := discount.MinSubtotal.Get(); ok && eligible.Decimal.LessThan(minSubtotal.Decimal) {
		return rejectDiscount(constants.DiscountRejectMinSubtotal)
	}

	if discount.MaxRedemptions != nil {
		used, err := r.redemptionRepo.CountByDiscount(discount.ID)
		if err != nil {
			return r.lookupFailed("discount_redemption_count_failed", normalized, err)
		}
		if used >= int64(*discount.MaxRedemptions) {
			return rejectDiscount(constants.DiscountRejectUsageLimit)
		}
	}

	if discount.PerCustomerLimit != nil {
		used, err := r.countCustomerRedemptions(discount.ID, pctx.Owner)
		if err != nil {
			return r.lookupFailed("discount_redemption_count_failed", normalized, err)
		}
		if used >= int64(*discount.PerCustomerLimit) {
			return rejectDiscount(constants.DiscountRejectPerCustomerLimit)
		}
	}

	amount, ok := calculateDiscountAmount(discount, eligible, input.ShippingTotal)
	if !ok {
		logger.Warnw("discount_unknown_type",
			"discount_id", discount.ID,
			"discount_type", discount.Type,
		)
		return rejectDiscount(constants.DiscountRejectUnknownType)
	}
	if !amount.IsPositive() {
		return rejectDiscount(constants.DiscountRejectZeroAmount)
	}

	return DiscountResult{
		Amount:           amount,
		EligibleSubtotal: eligible,
		Snapshot: models.DiscountSnapshot{
			DiscountID:    discount.ID,
			CodeID:        code.ID,
			Code:          code.Code,
			DiscountType:  discount.Type,
			DiscountValue: discount.Value,
			Eligibility:   discount.Eligibility,
		},
	}
}

func (r *DiscountResolver) lookupFailed(event, code string, err error) DiscountResult {
	logger.Errorw(event, "code", code, "error", err)
	return rejectDiscount(constants.DiscountRejectLookupFailed)
}

func (r *DiscountResolver) countCustomerRedemptions(discountID uint, owner CartOwner) (int64, error) {
	if owner.UserID != 0 {
		return r.redemptionRepo.CountByUser(discountID, owner.UserID)
	}
	if owner.GuestToken != "" {
		return r.redemptionRepo.CountByGuestToken(discountID, owner.GuestToken)
	}
	return 0, nil
}

// eligibleSubtotal 计算满足适用范围的小计；有过滤条件但无命中时 matched 为 false
func (r *DiscountResolver) eligibleSubtotal(filter eligibilityFilter, input DiscountInput) (models.Money, bool, error) {
	if !filter.restricts() {
		return input.Subtotal, true, nil
	}

	categoryOf := make(map[uint]uint)
	knownProduct := make(map[uint]bool)
	total := decimal.Zero
	matched := false
	for _, item := range input.Items {
		eligible := filter.hasProduct(item.ProductID)
		if !eligible && filter.hasCategories() {
			if _, seen := knownProduct[item.ProductID]; !seen {
				categoryID, ok, err := r.catalogRepo.GetCategoryID(item.ProductID)
				if err != nil {
					return models.ZeroMoney(), false, err
				}
				knownProduct[item.ProductID] = ok
				categoryOf[item.ProductID] = categoryID
			}
			if knownProduct[item.ProductID] {
				eligible = filter.hasCategory(categoryOf[item.ProductID])
			}
		}
		if !eligible {
			continue
		}
		matched = true
		total = total.Add(item.LineSubtotal.Decimal)
	}
	return models.NewMoneyFromDecimal(total), matched, nil
}

// calculateDiscountAmount 按类型计算金额，未知类型返回 false
func calculateDiscountAmount(discount *models.Discount, eligible, shippingTotal models.Money) (models.Money, bool) {
	var amount decimal.Decimal
	switch discount.Type {
	case constants.DiscountTypePercent:
		amount = eligible.Decimal.Mul(discount.Value.Decimal).Div(decimal.NewFromInt(100)).Floor()
	case constants.DiscountTypeFixed:
		amount = decimal.Min(eligible.Decimal, discount.Value.Decimal)
	case constants.DiscountTypeShipping:
		amount = shippingTotal.Decimal
		if discount.Value.IsPositive() {
			amount = decimal.Min(shippingTotal.Decimal, discount.Value.Decimal)
		}
	default:
		return models.ZeroMoney(), false
	}
	return models.NewMoneyFromDecimal(amount).ClampNonNegative(), true
}

// eligibilityFilter 适用范围在解析入口一次性解码后的形态
type eligibilityFilter struct {
	kind       string
	products   map[uint]struct{}
	categories map[uint]struct{}
}

func decodeEligibility(e models.DiscountEligibility) eligibilityFilter {
	filter := eligibilityFilter{kind: e.Kind()}
	if len(e.ProductIDs) > 0 {
		filter.products = make(map[uint]struct{}, len(e.ProductIDs))
		for _, id := range e.ProductIDs {
			filter.products[id] = struct{}{}
		}
	}
	if len(e.CategoryIDs) > 0 {
		filter.categories = make(map[uint]struct{}, len(e.CategoryIDs))
		for _, id := range e.CategoryIDs {
			filter.categories[id] = struct{}{}
		}
	}
	return filter
}

func (f eligibilityFilter) restricts() bool {
	return f.kind != constants.EligibilityNone
}

func (f eligibilityFilter) hasCategories() bool {
	return len(f.categories) > 0
}

func (f eligibilityFilter) hasProduct(id uint) bool {
	_, ok := f.products[id]
	return ok
}

func (f eligibilityFilter) hasCategory(id uint) bool {
	_, ok := f.categories[id]
	return ok
}
