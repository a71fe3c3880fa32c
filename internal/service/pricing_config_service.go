package service

import (
	"context"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// PricingConfigService 税率与配送配置管理，写操作后使报价缓存失效
type PricingConfigService struct {
	taxRepo      repository.TaxProfileRepository
	shippingRepo repository.ShippingRepository
	quotes       *QuoteService
}

// NewPricingConfigService 创建计价配置服务
func NewPricingConfigService(taxRepo repository.TaxProfileRepository, shippingRepo repository.ShippingRepository, quotes *QuoteService) *PricingConfigService {
	return &PricingConfigService{
		taxRepo:      taxRepo,
		shippingRepo: shippingRepo,
		quotes:       quotes,
	}
}

func (s *PricingConfigService) invalidate(ctx context.Context, event string, kv ...interface{}) {
	logger.Infow(event, kv...)
	if s.quotes != nil {
		s.quotes.InvalidatePricing(ctx)
	}
}

// ListTaxProfiles 税率配置列表
func (s *PricingConfigService) ListTaxProfiles(filter repository.TaxProfileListFilter) ([]models.TaxProfile, int64, error) {
	return s.taxRepo.List(filter)
}

// CreateTaxProfile 创建税率配置
func (s *PricingConfigService) CreateTaxProfile(ctx context.Context, profile *models.TaxProfile) (*models.TaxProfile, error) {
	profile.ID = 0
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := s.taxRepo.Create(profile); err != nil {
		return nil, err
	}
	s.invalidate(ctx, "tax_profile_created", "profile_id", profile.ID, "country", profile.CountryCode)
	return profile, nil
}

// UpdateTaxProfile 更新税率配置
func (s *PricingConfigService) UpdateTaxProfile(ctx context.Context, id uint, input *models.TaxProfile) (*models.TaxProfile, error) {
	existing, err := s.taxRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrTaxProfileNotFound
	}
	input.ID = existing.ID
	input.CreatedAt = existing.CreatedAt
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := s.taxRepo.Update(input); err != nil {
		return nil, err
	}
	s.invalidate(ctx, "tax_profile_updated", "profile_id", input.ID)
	return input, nil
}

// DeleteTaxProfile 删除税率配置
func (s *PricingConfigService) DeleteTaxProfile(ctx context.Context, id uint) error {
	existing, err := s.taxRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrTaxProfileNotFound
	}
	if err := s.taxRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, "tax_profile_deleted", "profile_id", id)
	return nil
}

// ListZones 配送区域列表
func (s *PricingConfigService) ListZones() ([]models.ShippingZone, error) {
	return s.shippingRepo.ListZones()
}

// CreateZone 创建配送区域
func (s *PricingConfigService) CreateZone(ctx context.Context, zone *models.ShippingZone) (*models.ShippingZone, error) {
	zone.ID = 0
	if err := zone.Validate(); err != nil {
		return nil, err
	}
	if err := s.shippingRepo.CreateZone(zone); err != nil {
		return nil, err
	}
	s.invalidate(ctx, "shipping_zone_created", "zone_id", zone.ID)
	return zone, nil
}

// UpdateZone 更新配送区域
func (s *PricingConfigService) UpdateZone(ctx context.Context, id uint, input *models.ShippingZone) (*models.ShippingZone, error) {
	existing, err := s.shippingRepo.GetZoneByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrShippingZoneNotFound
	}
	input.ID = existing.ID
	input.CreatedAt = existing.CreatedAt
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := s.shippingRepo.UpdateZone(input); err != nil {
		return nil, err
	}
	s.invalidate(ctx, "shipping_zone_updated", "zone_id", input.ID)
	return input, nil
}

// DeleteZone 删除配送区域，仍被配送方式引用时拒绝
func (s *PricingConfigService) DeleteZone(ctx context.Context, id uint) error {
	existing, err := s.shippingRepo.GetZoneByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrShippingZoneNotFound
	}
	count, err := s.shippingRepo.CountMethodsByZone(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrShippingZoneInUse
	}
	if err := s.shippingRepo.DeleteZone(id); err != nil {
		return err
	}
	s.invalidate(ctx, "shipping_zone_deleted", "zone_id", id)
	return nil
}

// ListMethods 配送方式列表
func (s *PricingConfigService) ListMethods() ([]models.ShippingMethod, error) {
	return s.shippingRepo.ListMethods()
}

// CreateMethod 创建配送方式
func (s *PricingConfigService) CreateMethod(ctx context.Context, method *models.ShippingMethod) (*models.ShippingMethod, error) {
	method.ID = 0
	if err := method.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureZone(method.ZoneID); err != nil {
		return nil, err
	}
	if err := s.shippingRepo.CreateMethod(method); err != nil {
		return nil, err
	}
	s.invalidate(ctx, "shipping_method_created", "method_id", method.ID)
	return method, nil
}

// UpdateMethod 更新配送方式
func (s *PricingConfigService) UpdateMethod(ctx context.Context, id uint, input *models.ShippingMethod) (*models.ShippingMethod, error) {
	existing, err := s.shippingRepo.GetMethodByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrShippingMethodNotFound
	}
	input.ID = existing.ID
	input.CreatedAt = existing.CreatedAt
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureZone(input.ZoneID); err != nil {
		return nil, err
	}
	if err := s.shippingRepo.UpdateMethod(input); err != nil {
		return nil, err
	}
	s.invalidate(ctx, "shipping_method_updated", "method_id", input.ID)
	return s.shippingRepo.GetMethodByID(input.ID)
}

// DeleteMethod 删除配送方式及其阶梯
func (s *PricingConfigService) DeleteMethod(ctx context.Context, id uint) error {
	existing, err := s.shippingRepo.GetMethodByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrShippingMethodNotFound
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return s.shippingRepo.WithTx(tx).DeleteMethod(id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, "shipping_method_deleted", "method_id", id)
	return nil
}

// CreateRate 为配送方式新增阶梯运费
func (s *PricingConfigService) CreateRate(ctx context.Context, rate *models.ShippingRate) (*models.ShippingRate, error) {
	rate.ID = 0
	if err := rate.Validate(); err != nil {
		return nil, err
	}
	method, err := s.shippingRepo.GetMethodByID(rate.MethodID)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, ErrShippingMethodNotFound
	}
	if err := s.shippingRepo.CreateRate(rate); err != nil {
		return nil, err
	}
	s.invalidate(ctx, "shipping_rate_created", "rate_id", rate.ID, "method_id", rate.MethodID)
	return rate, nil
}

// UpdateRate 更新阶梯运费
func (s *PricingConfigService) UpdateRate(ctx context.Context, id uint, input *models.ShippingRate) (*models.ShippingRate, error) {
	existing, err := s.shippingRepo.GetRateByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrShippingRateNotFound
	}
	input.ID = existing.ID
	input.MethodID = existing.MethodID
	input.CreatedAt = existing.CreatedAt
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := s.shippingRepo.UpdateRate(input); err != nil {
		return nil, err
	}
	s.invalidate(ctx, "shipping_rate_updated", "rate_id", input.ID)
	return input, nil
}

// DeleteRate 删除阶梯运费
func (s *PricingConfigService) DeleteRate(ctx context.Context, id uint) error {
	existing, err := s.shippingRepo.GetRateByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrShippingRateNotFound
	}
	if err := s.shippingRepo.DeleteRate(id); err != nil {
		return err
	}
	s.invalidate(ctx, "shipping_rate_deleted", "rate_id", id)
	return nil
}

func (s *PricingConfigService) ensureZone(zoneID *uint) error {
	if zoneID == nil {
		return nil
	}
	zone, err := s.shippingRepo.GetZoneByID(*zoneID)
	if err != nil {
		return err
	}
	if zone == nil {
		return ErrShippingZoneNotFound
	}
	return nil
}
