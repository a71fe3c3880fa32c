package service

import (
	"sort"
	"strings"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// ShippingQuote 单个配送方式的报价
type ShippingQuote struct {
	MethodID     uint         `json:"method_id"`
	Name         string       `json:"name"`
	ZoneID       *uint        `json:"zone_id,omitempty"`
	RateID       *uint        `json:"rate_id,omitempty"`
	Amount       models.Money `json:"amount"`
	FreeShipping bool         `json:"free_shipping"`
	SortOrder    int          `json:"sort_order"`
}

// ShippingResolver 配送报价解析
//
// Quote 同时服务于结算前的可选配送列表和已选配送方式的校验（ValidateMethod）。
// 两处必须共用同一套匹配逻辑，修改报价规则时不要为校验单独分叉实现。
type ShippingResolver struct {
	shippingRepo repository.ShippingRepository
}

// NewShippingResolver 创建配送报价解析器
func NewShippingResolver(shippingRepo repository.ShippingRepository) *ShippingResolver {
	return &ShippingResolver{shippingRepo: shippingRepo}
}

// WithTx 绑定事务
func (r *ShippingResolver) WithTx(tx *gorm.DB) *ShippingResolver {
	if tx == nil {
		return r
	}
	return &ShippingResolver{shippingRepo: r.shippingRepo.WithTx(tx)}
}

// Quote 返回该地址与小计下可用的配送方式，按金额升序
func (r *ShippingResolver) Quote(address models.Address, subtotal models.Money) ([]ShippingQuote, error) {
	zones, err := r.shippingRepo.ListActiveZones()
	if err != nil {
		return nil, err
	}
	methods, err := r.shippingRepo.ListActiveMethods()
	if err != nil {
		return nil, err
	}
	return quoteShipping(zones, methods, address, subtotal), nil
}

// ValidateMethod 校验已选配送方式当前仍可用，并返回其最新报价
func (r *ShippingResolver) ValidateMethod(address models.Address, subtotal models.Money, methodID uint) (*ShippingQuote, error) {
	method, err := r.shippingRepo.GetMethodByID(methodID)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, ErrShippingMethodNotFound
	}
	quotes, err := r.Quote(address, subtotal)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		if quotes[i].MethodID == methodID {
			quote := quotes[i]
			return &quote, nil
		}
	}
	return nil, ErrShippingMethodUnavailable
}

func quoteShipping(zones []models.ShippingZone, methods []models.ShippingMethod, address models.Address, subtotal models.Money) []ShippingQuote {
	addr := address.Normalize()
	matchedZones := make(map[uint]bool, len(zones))
	for _, zone := range zones {
		if zone.IsActive && shippingZoneMatches(zone, addr) {
			matchedZones[zone.ID] = true
		}
	}

	quotes := make([]ShippingQuote, 0, len(methods))
	for _, method := range methods {
		if !method.IsActive {
			continue
		}
		if method.ZoneID != nil && !matchedZones[*method.ZoneID] {
			continue
		}
		quote, ok := quoteMethod(method, subtotal)
		if !ok {
			continue
		}
		quotes = append(quotes, quote)
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		if !quotes[i].Amount.Decimal.Equal(quotes[j].Amount.Decimal) {
			return quotes[i].Amount.Decimal.LessThan(quotes[j].Amount.Decimal)
		}
		if quotes[i].SortOrder != quotes[j].SortOrder {
			return quotes[i].SortOrder < quotes[j].SortOrder
		}
		return quotes[i].MethodID < quotes[j].MethodID
	})
	return quotes
}

// quoteMethod 计算单个方式的运费；无命中阶梯、无固定运费且不满足包邮时不可报价
func quoteMethod(method models.ShippingMethod, subtotal models.Money) (ShippingQuote, bool) {
	quote := ShippingQuote{
		MethodID:  method.ID,
		Name:      method.Name,
		ZoneID:    method.ZoneID,
		Amount:    models.ZeroMoney(),
		SortOrder: method.SortOrder,
	}

	var tier *models.ShippingRate
	for i := range method.Rates {
		if method.Rates[i].IsActive && method.Rates[i].Contains(subtotal) {
			tier = &method.Rates[i]
			break
		}
	}
	flatRate, hasFlat := method.FlatRate.Get()
	freeOver, hasFreeOver := method.FreeOver.Get()
	free := hasFreeOver && subtotal.Decimal.GreaterThanOrEqual(freeOver.Decimal)

	if tier == nil && !hasFlat && !free {
		return ShippingQuote{}, false
	}

	switch {
	case free:
		quote.FreeShipping = true
	case tier != nil:
		rateID := tier.ID
		quote.RateID = &rateID
		quote.Amount = tier.Rate.ClampNonNegative()
	case hasFlat:
		quote.Amount = flatRate.ClampNonNegative()
	}
	if free && tier != nil {
		rateID := tier.ID
		quote.RateID = &rateID
	}
	return quote, true
}

func shippingZoneMatches(zone models.ShippingZone, addr models.Address) bool {
	if countries := zone.Countries.Normalized(); len(countries) > 0 && !containsFold(countries, addr.Country) {
		return false
	}
	if states := zone.States.Normalized(); len(states) > 0 && !containsFold(states, addr.State) {
		return false
	}
	if cities := zone.Cities.Normalized(); len(cities) > 0 {
		city := strings.ToLower(addr.City)
		hit := false
		for _, pattern := range cities {
			if strings.Contains(city, pattern) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func containsFold(values []string, target string) bool {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return false
	}
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
