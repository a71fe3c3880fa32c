package service

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// DiscountAdminService 优惠规则管理服务
type DiscountAdminService struct {
	discountRepo   repository.DiscountRepository
	redemptionRepo repository.DiscountRedemptionRepository
}

// NewDiscountAdminService 创建优惠规则管理服务
func NewDiscountAdminService(discountRepo repository.DiscountRepository, redemptionRepo repository.DiscountRedemptionRepository) *DiscountAdminService {
	return &DiscountAdminService{
		discountRepo:   discountRepo,
		redemptionRepo: redemptionRepo,
	}
}

// SaveDiscountInput 创建/更新优惠规则输入
type SaveDiscountInput struct {
	Name             string
	Type             string
	Value            models.Money
	StartsAt         *time.Time
	EndsAt           *time.Time
	MinSubtotal      models.NullMoney
	MaxRedemptions   *int
	PerCustomerLimit *int
	ProductIDs       []uint
	CategoryIDs      []uint
	Stackable        bool
	IsActive         *bool
	Codes            []string
}

// RecordRedemptionInput 下单方回写使用记录的输入
type RecordRedemptionInput struct {
	Code       string
	UserID     uint
	GuestToken string
	OrderRef   string
	Amount     models.Money
}

// List 优惠规则列表
func (s *DiscountAdminService) List(filter repository.DiscountListFilter) ([]models.Discount, int64, error) {
	return s.discountRepo.List(filter)
}

// Get 获取优惠规则（含优惠码）
func (s *DiscountAdminService) Get(id uint) (*models.Discount, error) {
	discount, err := s.discountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	codes, err := s.discountRepo.ListCodes(discount.ID)
	if err != nil {
		return nil, err
	}
	discount.Codes = codes
	return discount, nil
}

// Create 创建优惠规则及其优惠码
func (s *DiscountAdminService) Create(input SaveDiscountInput) (*models.Discount, error) {
	discount, err := models.NewDiscount(input.Name, input.Type, input.Value)
	if err != nil {
		return nil, err
	}
	applyDiscountInput(discount, input)
	if err := discount.Validate(); err != nil {
		return nil, err
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.discountRepo.WithTx(tx)
		if err := repo.Create(discount); err != nil {
			return err
		}
		codes, err := s.createCodes(repo, discount.ID, input.Codes)
		if err != nil {
			return err
		}
		discount.Codes = codes
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("discount_created", "discount_id", discount.ID, "type", discount.Type, "codes", len(discount.Codes))
	return discount, nil
}

// Update 更新优惠规则；已应用的购物车保留快照，不受影响
func (s *DiscountAdminService) Update(id uint, input SaveDiscountInput) (*models.Discount, error) {
	existing, err := s.discountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrDiscountNotFound
	}
	existing.Name = strings.TrimSpace(input.Name)
	existing.Type = input.Type
	existing.Value = input.Value
	applyDiscountInput(existing, input)
	if err := existing.Validate(); err != nil {
		return nil, err
	}
	if err := s.discountRepo.Update(existing); err != nil {
		return nil, err
	}
	return s.Get(existing.ID)
}

// Delete 删除优惠规则
func (s *DiscountAdminService) Delete(id uint) error {
	existing, err := s.discountRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrDiscountNotFound
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		return s.discountRepo.WithTx(tx).Delete(id)
	})
}

// AddCode 为优惠规则新增优惠码
func (s *DiscountAdminService) AddCode(discountID uint, code string) (*models.DiscountCode, error) {
	discount, err := s.discountRepo.GetByID(discountID)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	codes, err := s.createCodes(s.discountRepo, discountID, []string{code})
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, models.ErrDiscountCodeRequired
	}
	return &codes[0], nil
}

// SetCodeActive 启用/停用优惠码
func (s *DiscountAdminService) SetCodeActive(codeID uint, active bool) (*models.DiscountCode, error) {
	code, err := s.discountRepo.GetCodeByID(codeID)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, ErrDiscountCodeNotFound
	}
	code.IsActive = active
	if err := s.discountRepo.UpdateCode(code); err != nil {
		return nil, err
	}
	return code, nil
}

// DeleteCode 删除优惠码
func (s *DiscountAdminService) DeleteCode(codeID uint) error {
	code, err := s.discountRepo.GetCodeByID(codeID)
	if err != nil {
		return err
	}
	if code == nil {
		return ErrDiscountCodeNotFound
	}
	return s.discountRepo.DeleteCode(codeID)
}

// ListRedemptions 使用记录列表
func (s *DiscountAdminService) ListRedemptions(filter repository.RedemptionListFilter) ([]models.DiscountRedemption, int64, error) {
	return s.redemptionRepo.List(filter)
}

// RecordRedemption 写入使用记录（订单落单时由下单方调用，计价引擎本身只读）
func (s *DiscountAdminService) RecordRedemption(input RecordRedemptionInput) (*models.DiscountRedemption, error) {
	normalized := models.NormalizeDiscountCode(input.Code)
	if normalized == "" {
		return nil, models.ErrDiscountCodeRequired
	}
	if input.UserID == 0 && strings.TrimSpace(input.GuestToken) == "" {
		return nil, models.ErrCartOwnerInvalid
	}
	code, err := s.discountRepo.GetCodeByNormalized(normalized)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, ErrDiscountCodeNotFound
	}
	redemption := &models.DiscountRedemption{
		DiscountID: code.DiscountID,
		CodeID:     code.ID,
		OrderRef:   strings.TrimSpace(input.OrderRef),
		Amount:     input.Amount.ClampNonNegative(),
	}
	if input.UserID != 0 {
		userID := input.UserID
		redemption.UserID = &userID
	} else {
		token := strings.TrimSpace(input.GuestToken)
		redemption.GuestToken = &token
	}
	if err := s.redemptionRepo.Create(redemption); err != nil {
		return nil, err
	}
	logger.Infow("discount_redemption_recorded",
		"discount_id", redemption.DiscountID,
		"code_id", redemption.CodeID,
		"order_ref", redemption.OrderRef,
	)
	return redemption, nil
}

func (s *DiscountAdminService) createCodes(repo repository.DiscountRepository, discountID uint, raw []string) ([]models.DiscountCode, error) {
	codes := make([]models.DiscountCode, 0, len(raw))
	for _, value := range raw {
		if strings.TrimSpace(value) == "" {
			continue
		}
		code, err := models.NewDiscountCode(discountID, value)
		if err != nil {
			return nil, err
		}
		dup, err := repo.GetCodeByNormalized(code.NormalizedCode)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, ErrDiscountCodeExists
		}
		if err := repo.CreateCode(code); err != nil {
			return nil, err
		}
		codes = append(codes, *code)
	}
	return codes, nil
}

func applyDiscountInput(discount *models.Discount, input SaveDiscountInput) {
	discount.StartsAt = input.StartsAt
	discount.EndsAt = input.EndsAt
	discount.MinSubtotal = input.MinSubtotal
	discount.MaxRedemptions = input.MaxRedemptions
	discount.PerCustomerLimit = input.PerCustomerLimit
	discount.Eligibility = models.DiscountEligibility{
		ProductIDs:  uniqueIDs(input.ProductIDs),
		CategoryIDs: uniqueIDs(input.CategoryIDs),
	}
	discount.Stackable = input.Stackable
	if input.IsActive != nil {
		discount.IsActive = *input.IsActive
	}
}

func uniqueIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
