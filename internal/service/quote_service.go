package service

import (
	"context"
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"golang.org/x/sync/singleflight"
)

// QuoteService 无状态税费/运费报价（不依赖购物车），结果按计价配置版本缓存
type QuoteService struct {
	taxes    *TaxResolver
	shipping *ShippingResolver
	ttl      time.Duration
	group    singleflight.Group
}

// NewQuoteService 创建报价服务
func NewQuoteService(cfg *config.Config, taxes *TaxResolver, shipping *ShippingResolver) *QuoteService {
	ttl := time.Minute
	if cfg != nil && cfg.Pricing.QuoteCacheTTLSeconds >= 0 {
		ttl = time.Duration(cfg.Pricing.QuoteCacheTTLSeconds) * time.Second
	}
	return &QuoteService{
		taxes:    taxes,
		shipping: shipping,
		ttl:      ttl,
	}
}

// TaxQuote 计算任意计税基数在该地址下的税费明细
func (s *QuoteService) TaxQuote(ctx context.Context, base models.Money, address models.Address) (TaxBreakdown, error) {
	base = base.ClampNonNegative()
	addr := address.Normalize()
	key := s.cacheKey(ctx, "tax", addr, base)

	var cached TaxBreakdown
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		breakdown, err := s.taxes.Resolve(base, addr)
		if err != nil {
			return nil, err
		}
		s.writeCache(ctx, key, breakdown)
		return breakdown, nil
	})
	if err != nil {
		return emptyTaxBreakdown(), err
	}
	return value.(TaxBreakdown), nil
}

// ShippingQuote 计算该地址与小计下的可选配送方式
func (s *QuoteService) ShippingQuote(ctx context.Context, address models.Address, subtotal models.Money) ([]ShippingQuote, error) {
	subtotal = subtotal.ClampNonNegative()
	addr := address.Normalize()
	key := s.cacheKey(ctx, "shipping", addr, subtotal)

	var cached []ShippingQuote
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		quotes, err := s.shipping.Quote(addr, subtotal)
		if err != nil {
			return nil, err
		}
		s.writeCache(ctx, key, quotes)
		return quotes, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]ShippingQuote), nil
}

// InvalidatePricing 计价配置变更后使报价缓存失效
func (s *QuoteService) InvalidatePricing(ctx context.Context) {
	version, err := cache.BumpPricingVersion(ctx)
	if err != nil {
		logger.Warnw("pricing_cache_bump_failed", "error", err)
		return
	}
	logger.Debugw("pricing_cache_bumped", "version", version)
}

func (s *QuoteService) cacheKey(ctx context.Context, kind string, addr models.Address, amount models.Money) string {
	version, err := cache.PricingVersion(ctx)
	if err != nil {
		logger.Warnw("pricing_cache_version_failed", "error", err)
	}
	fingerprint := strings.ToLower(strings.Join([]string{
		addr.Country,
		addr.State,
		addr.City,
		amount.String(),
	}, "|"))
	return cache.QuoteKey(kind, version, fingerprint)
}

func (s *QuoteService) readCache(ctx context.Context, key string, dest interface{}) bool {
	if s.ttl <= 0 {
		return false
	}
	hit, err := cache.GetQuote(ctx, key, dest)
	if err != nil {
		logger.Warnw("quote_cache_read_failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *QuoteService) writeCache(ctx context.Context, key string, value interface{}) {
	if err := cache.SetQuote(ctx, key, value, s.ttl); err != nil {
		logger.Warnw("quote_cache_write_failed", "key", key, "error", err)
	}
}
