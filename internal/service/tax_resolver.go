package service

import (
	"sort"
	"strings"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxLine 单个命中税率的计算明细
type TaxLine struct {
	ProfileID uint            `json:"profile_id"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	Inclusive bool            `json:"inclusive"`
	Priority  int             `json:"priority"`
	Amount    models.Money    `json:"amount"`
}

// TaxBreakdown 税费结果：Additive 计入购物车 tax_total，Inclusive 仅供展示
type TaxBreakdown struct {
	Additive  models.Money `json:"additive"`
	Inclusive models.Money `json:"inclusive"`
	Lines     []TaxLine    `json:"lines"`
}

func emptyTaxBreakdown() TaxBreakdown {
	return TaxBreakdown{
		Additive:  models.ZeroMoney(),
		Inclusive: models.ZeroMoney(),
		Lines:     []TaxLine{},
	}
}

// TaxResolver 按收货地址匹配税率配置
type TaxResolver struct {
	taxRepo repository.TaxProfileRepository
}

// NewTaxResolver 创建税费解析器
func NewTaxResolver(taxRepo repository.TaxProfileRepository) *TaxResolver {
	return &TaxResolver{taxRepo: taxRepo}
}

// WithTx 绑定事务
func (r *TaxResolver) WithTx(tx *gorm.DB) *TaxResolver {
	if tx == nil {
		return r
	}
	return &TaxResolver{taxRepo: r.taxRepo.WithTx(tx)}
}

// Resolve 计算计税基数在该地址下的税费
func (r *TaxResolver) Resolve(base models.Money, address models.Address) (TaxBreakdown, error) {
	if !address.HasCountry() {
		return emptyTaxBreakdown(), nil
	}
	profiles, err := r.taxRepo.ListActive()
	if err != nil {
		return emptyTaxBreakdown(), err
	}
	return computeTaxBreakdown(profiles, base, address), nil
}

// computeTaxBreakdown 多个外加税率针对同一基数独立累加，不做复利
func computeTaxBreakdown(profiles []models.TaxProfile, base models.Money, address models.Address) TaxBreakdown {
	result := emptyTaxBreakdown()
	addr := address.Normalize()
	if addr.Country == "" {
		return result
	}

	matched := make([]models.TaxProfile, 0, len(profiles))
	for _, profile := range profiles {
		if profile.IsActive && taxProfileMatches(profile, addr) {
			matched = append(matched, profile)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority < matched[j].Priority
	})

	hundred := decimal.NewFromInt(100)
	additive := decimal.Zero
	inclusive := decimal.Zero
	for _, profile := range matched {
		amount := decimal.Zero
		if profile.Rate.IsPositive() {
			if profile.Inclusive {
				amount = base.Decimal.Mul(profile.Rate).Div(hundred.Add(profile.Rate)).Round(0)
				inclusive = inclusive.Add(amount)
			} else {
				amount = base.Decimal.Mul(profile.Rate).Div(hundred).Round(0)
				additive = additive.Add(amount)
			}
		}
		result.Lines = append(result.Lines, TaxLine{
			ProfileID: profile.ID,
			Name:      profile.Name,
			Rate:      profile.Rate,
			Inclusive: profile.Inclusive,
			Priority:  profile.Priority,
			Amount:    models.NewMoneyFromDecimal(amount),
		})
	}

	result.Additive = models.NewMoneyFromDecimal(additive).ClampNonNegative()
	result.Inclusive = models.NewMoneyFromDecimal(inclusive).ClampNonNegative()
	return result
}

func taxProfileMatches(profile models.TaxProfile, addr models.Address) bool {
	if !strings.EqualFold(strings.TrimSpace(profile.CountryCode), addr.Country) {
		return false
	}
	if state := strings.TrimSpace(profile.StateCode); state != "" && !strings.EqualFold(state, addr.State) {
		return false
	}
	if city := strings.ToLower(strings.TrimSpace(profile.City)); city != "" {
		if !strings.Contains(strings.ToLower(addr.City), city) {
			return false
		}
	}
	return true
}
