package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SaveDiscountRequest 创建/更新优惠规则请求
type SaveDiscountRequest struct {
	Name             string           `json:"name" binding:"required"`
	Type             string           `json:"type" binding:"required"`
	Value            models.Money     `json:"value"`
	StartsAt         string           `json:"starts_at"`
	EndsAt           string           `json:"ends_at"`
	MinSubtotal      models.NullMoney `json:"min_subtotal"`
	MaxRedemptions   *int             `json:"max_redemptions"`
	PerCustomerLimit *int             `json:"per_customer_limit"`
	ProductIDs       []uint           `json:"product_ids"`
	CategoryIDs      []uint           `json:"category_ids"`
	Stackable        bool             `json:"stackable"`
	IsActive         *bool            `json:"is_active"`
	Codes            []string         `json:"codes"`
}

func (req SaveDiscountRequest) toInput() (service.SaveDiscountInput, error) {
	startsAt, err := parseTimeNullable(req.StartsAt)
	if err != nil {
		return service.SaveDiscountInput{}, err
	}
	endsAt, err := parseTimeNullable(req.EndsAt)
	if err != nil {
		return service.SaveDiscountInput{}, err
	}
	return service.SaveDiscountInput{
		Name:             req.Name,
		Type:             req.Type,
		Value:            req.Value,
		StartsAt:         startsAt,
		EndsAt:           endsAt,
		MinSubtotal:      req.MinSubtotal,
		MaxRedemptions:   req.MaxRedemptions,
		PerCustomerLimit: req.PerCustomerLimit,
		ProductIDs:       req.ProductIDs,
		CategoryIDs:      req.CategoryIDs,
		Stackable:        req.Stackable,
		IsActive:         req.IsActive,
		Codes:            req.Codes,
	}, nil
}

// GetAdminDiscounts 优惠规则列表
func (h *Handler) GetAdminDiscounts(c *gin.Context) {
	page, pageSize := pageQuery(c)
	discounts, total, err := h.DiscountAdminService.List(repository.DiscountListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Type:     strings.TrimSpace(c.Query("type")),
		IsActive: handlershared.ParseBoolQuery(c, "is_active"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, discounts, response.NewPagination(page, pageSize, total))
}

// GetAdminDiscount 优惠规则详情（含优惠码）
func (h *Handler) GetAdminDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	discount, err := h.DiscountAdminService.Get(id)
	if err != nil {
		respondDiscountError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, discount)
}

// CreateDiscount 创建优惠规则
func (h *Handler) CreateDiscount(c *gin.Context) {
	var req SaveDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	discount, err := h.DiscountAdminService.Create(input)
	if err != nil {
		respondDiscountError(c, err, "error.save_failed")
		return
	}
	requestLog(c).Infow("admin_discount_created", "operator_admin_id", currentAdminID(c), "discount_id", discount.ID)
	response.Success(c, discount)
}

// UpdateDiscount 更新优惠规则
func (h *Handler) UpdateDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SaveDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	discount, err := h.DiscountAdminService.Update(id, input)
	if err != nil {
		respondDiscountError(c, err, "error.save_failed")
		return
	}
	requestLog(c).Infow("admin_discount_updated", "operator_admin_id", currentAdminID(c), "discount_id", discount.ID)
	response.Success(c, discount)
}

// DeleteDiscount 删除优惠规则
func (h *Handler) DeleteDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.DiscountAdminService.Delete(id); err != nil {
		respondDiscountError(c, err, "error.delete_failed")
		return
	}
	requestLog(c).Infow("admin_discount_deleted", "operator_admin_id", currentAdminID(c), "discount_id", id)
	response.Success(c, nil)
}

// AddDiscountCodeRequest 新增优惠码请求
type AddDiscountCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// AddDiscountCode 为优惠规则新增优惠码
func (h *Handler) AddDiscountCode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AddDiscountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	code, err := h.DiscountAdminService.AddCode(id, req.Code)
	if err != nil {
		respondDiscountError(c, err, "error.save_failed")
		return
	}
	response.Success(c, code)
}

// UpdateDiscountCodeRequest 启停优惠码请求
type UpdateDiscountCodeRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UpdateDiscountCode 启用/停用优惠码
func (h *Handler) UpdateDiscountCode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateDiscountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	code, err := h.DiscountAdminService.SetCodeActive(id, *req.IsActive)
	if err != nil {
		respondDiscountError(c, err, "error.save_failed")
		return
	}
	response.Success(c, code)
}

// DeleteDiscountCode 删除优惠码
func (h *Handler) DeleteDiscountCode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.DiscountAdminService.DeleteCode(id); err != nil {
		respondDiscountError(c, err, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}

// GetDiscountRedemptions 优惠使用记录列表
func (h *Handler) GetDiscountRedemptions(c *gin.Context) {
	page, pageSize := pageQuery(c)
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	discountID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("discount_id")), 10, 64)
	userID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("user_id")), 10, 64)

	rows, total, err := h.DiscountAdminService.ListRedemptions(repository.RedemptionListFilter{
		Page:        page,
		PageSize:    pageSize,
		DiscountID:  uint(discountID),
		UserID:      uint(userID),
		OrderRef:    strings.TrimSpace(c.Query("order_ref")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.NewPagination(page, pageSize, total))
}

// RecordRedemptionRequest 下单方回写使用记录请求
type RecordRedemptionRequest struct {
	Code       string       `json:"code" binding:"required"`
	UserID     uint         `json:"user_id"`
	GuestToken string       `json:"guest_token"`
	OrderRef   string       `json:"order_ref"`
	Amount     models.Money `json:"amount"`
}

// RecordDiscountRedemption 写入优惠使用记录
func (h *Handler) RecordDiscountRedemption(c *gin.Context) {
	var req RecordRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	redemption, err := h.DiscountAdminService.RecordRedemption(service.RecordRedemptionInput{
		Code:       req.Code,
		UserID:     req.UserID,
		GuestToken: req.GuestToken,
		OrderRef:   req.OrderRef,
		Amount:     req.Amount,
	})
	if err != nil {
		respondDiscountError(c, err, "error.save_failed")
		return
	}
	requestLog(c).Infow("admin_discount_redemption_recorded",
		"operator_admin_id", currentAdminID(c),
		"redemption_id", redemption.ID,
		"order_ref", req.OrderRef,
	)
	response.Success(c, redemption)
}
