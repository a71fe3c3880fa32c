package admin

import (
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ====================  税率配置  ====================

// SaveTaxProfileRequest 创建/更新税率配置请求
type SaveTaxProfileRequest struct {
	Name        string          `json:"name" binding:"required"`
	CountryCode string          `json:"country_code" binding:"required"`
	StateCode   string          `json:"state_code"`
	City        string          `json:"city"`
	Rate        decimal.Decimal `json:"rate"`
	Inclusive   bool            `json:"inclusive"`
	Priority    int             `json:"priority"`
	IsActive    *bool           `json:"is_active"`
}

func (req SaveTaxProfileRequest) toModel() *models.TaxProfile {
	return &models.TaxProfile{
		Name:        strings.TrimSpace(req.Name),
		CountryCode: req.CountryCode,
		StateCode:   req.StateCode,
		City:        req.City,
		Rate:        req.Rate,
		Inclusive:   req.Inclusive,
		Priority:    req.Priority,
		IsActive:    boolOrDefault(req.IsActive, true),
	}
}

// GetTaxProfiles 税率配置列表
func (h *Handler) GetTaxProfiles(c *gin.Context) {
	page, pageSize := pageQuery(c)
	profiles, total, err := h.PricingConfigService.ListTaxProfiles(repository.TaxProfileListFilter{
		Page:        page,
		PageSize:    pageSize,
		CountryCode: strings.ToUpper(strings.TrimSpace(c.Query("country_code"))),
		IsActive:    handlershared.ParseBoolQuery(c, "is_active"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, profiles, response.NewPagination(page, pageSize, total))
}

// CreateTaxProfile 创建税率配置
func (h *Handler) CreateTaxProfile(c *gin.Context) {
	var req SaveTaxProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	profile, err := h.PricingConfigService.CreateTaxProfile(c.Request.Context(), req.toModel())
	if err != nil {
		respondTaxProfileError(c, err, "error.save_failed")
		return
	}
	response.Success(c, profile)
}

// UpdateTaxProfile 更新税率配置
func (h *Handler) UpdateTaxProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SaveTaxProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	profile, err := h.PricingConfigService.UpdateTaxProfile(c.Request.Context(), id, req.toModel())
	if err != nil {
		respondTaxProfileError(c, err, "error.save_failed")
		return
	}
	response.Success(c, profile)
}

// DeleteTaxProfile 删除税率配置
func (h *Handler) DeleteTaxProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PricingConfigService.DeleteTaxProfile(c.Request.Context(), id); err != nil {
		respondTaxProfileError(c, err, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}

// ====================  配送区域  ====================

// SaveShippingZoneRequest 创建/更新配送区域请求
type SaveShippingZoneRequest struct {
	Name      string   `json:"name" binding:"required"`
	Countries []string `json:"countries"`
	States    []string `json:"states"`
	Cities    []string `json:"cities"`
	IsActive  *bool    `json:"is_active"`
}

func (req SaveShippingZoneRequest) toModel() *models.ShippingZone {
	return &models.ShippingZone{
		Name:      strings.TrimSpace(req.Name),
		Countries: compactUpper(req.Countries),
		States:    compactUpper(req.States),
		Cities:    compact(req.Cities),
		IsActive:  boolOrDefault(req.IsActive, true),
	}
}

// GetShippingZones 配送区域列表
func (h *Handler) GetShippingZones(c *gin.Context) {
	zones, err := h.PricingConfigService.ListZones()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, zones)
}

// CreateShippingZone 创建配送区域
func (h *Handler) CreateShippingZone(c *gin.Context) {
	var req SaveShippingZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	zone, err := h.PricingConfigService.CreateZone(c.Request.Context(), req.toModel())
	if err != nil {
		respondShippingError(c, err, "error.save_failed")
		return
	}
	response.Success(c, zone)
}

// UpdateShippingZone 更新配送区域
func (h *Handler) UpdateShippingZone(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SaveShippingZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	zone, err := h.PricingConfigService.UpdateZone(c.Request.Context(), id, req.toModel())
	if err != nil {
		respondShippingError(c, err, "error.save_failed")
		return
	}
	response.Success(c, zone)
}

// DeleteShippingZone 删除配送区域，仍被引用时返回冲突
func (h *Handler) DeleteShippingZone(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PricingConfigService.DeleteZone(c.Request.Context(), id); err != nil {
		respondShippingError(c, err, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}

// ====================  配送方式  ====================

// SaveShippingMethodRequest 创建/更新配送方式请求
type SaveShippingMethodRequest struct {
	Name      string           `json:"name" binding:"required"`
	ZoneID    *uint            `json:"zone_id"`
	FlatRate  models.NullMoney `json:"flat_rate"`
	FreeOver  models.NullMoney `json:"free_over"`
	SortOrder int              `json:"sort_order"`
	IsActive  *bool            `json:"is_active"`
}

func (req SaveShippingMethodRequest) toModel() *models.ShippingMethod {
	zoneID := req.ZoneID
	if zoneID != nil && *zoneID == 0 {
		zoneID = nil
	}
	return &models.ShippingMethod{
		Name:      strings.TrimSpace(req.Name),
		ZoneID:    zoneID,
		FlatRate:  req.FlatRate,
		FreeOver:  req.FreeOver,
		SortOrder: req.SortOrder,
		IsActive:  boolOrDefault(req.IsActive, true),
	}
}

// GetShippingMethods 配送方式列表（含阶梯）
func (h *Handler) GetShippingMethods(c *gin.Context) {
	methods, err := h.PricingConfigService.ListMethods()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, methods)
}

// CreateShippingMethod 创建配送方式
func (h *Handler) CreateShippingMethod(c *gin.Context) {
	var req SaveShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	method, err := h.PricingConfigService.CreateMethod(c.Request.Context(), req.toModel())
	if err != nil {
		respondShippingError(c, err, "error.save_failed")
		return
	}
	response.Success(c, method)
}

// UpdateShippingMethod 更新配送方式
func (h *Handler) UpdateShippingMethod(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SaveShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	method, err := h.PricingConfigService.UpdateMethod(c.Request.Context(), id, req.toModel())
	if err != nil {
		respondShippingError(c, err, "error.save_failed")
		return
	}
	response.Success(c, method)
}

// DeleteShippingMethod 删除配送方式
func (h *Handler) DeleteShippingMethod(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PricingConfigService.DeleteMethod(c.Request.Context(), id); err != nil {
		respondShippingError(c, err, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}

// ====================  阶梯运费  ====================

// SaveShippingRateRequest 创建/更新阶梯运费请求
type SaveShippingRateRequest struct {
	MinSubtotal models.NullMoney `json:"min_subtotal"`
	MaxSubtotal models.NullMoney `json:"max_subtotal"`
	Rate        models.Money     `json:"rate"`
	IsActive    *bool            `json:"is_active"`
}

func (req SaveShippingRateRequest) toModel(methodID uint) *models.ShippingRate {
	return &models.ShippingRate{
		MethodID:    methodID,
		MinSubtotal: req.MinSubtotal,
		MaxSubtotal: req.MaxSubtotal,
		Rate:        req.Rate,
		IsActive:    boolOrDefault(req.IsActive, true),
	}
}

// CreateShippingRate 为配送方式新增阶梯运费
func (h *Handler) CreateShippingRate(c *gin.Context) {
	methodID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SaveShippingRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	rate, err := h.PricingConfigService.CreateRate(c.Request.Context(), req.toModel(methodID))
	if err != nil {
		respondShippingError(c, err, "error.save_failed")
		return
	}
	response.Success(c, rate)
}

// UpdateShippingRate 更新阶梯运费
func (h *Handler) UpdateShippingRate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SaveShippingRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	rate, err := h.PricingConfigService.UpdateRate(c.Request.Context(), id, req.toModel(0))
	if err != nil {
		respondShippingError(c, err, "error.save_failed")
		return
	}
	response.Success(c, rate)
}

// DeleteShippingRate 删除阶梯运费
func (h *Handler) DeleteShippingRate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PricingConfigService.DeleteRate(c.Request.Context(), id); err != nil {
		respondShippingError(c, err, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func compact(values []string) models.StringArray {
	out := make(models.StringArray, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func compactUpper(values []string) models.StringArray {
	out := compact(values)
	for i := range out {
		out[i] = strings.ToUpper(out[i])
	}
	return out
}
