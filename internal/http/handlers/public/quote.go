package public

import (
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

// TaxQuoteRequest 无状态计税请求
type TaxQuoteRequest struct {
	Amount  models.Money   `json:"amount"`
	Address models.Address `json:"address"`
}

// ShippingQuoteRequest 无状态运费报价请求
type ShippingQuoteRequest struct {
	Subtotal models.Money   `json:"subtotal"`
	Address  models.Address `json:"address"`
}

// PostTaxQuote 按地址与金额计算税费明细
func (h *Handler) PostTaxQuote(c *gin.Context) {
	var req TaxQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if !req.Address.HasCountry() {
		respondError(c, response.CodeBadRequest, "error.address_invalid", nil)
		return
	}
	breakdown, err := h.QuoteService.TaxQuote(c.Request.Context(), req.Amount, req.Address)
	if err != nil {
		respondError(c, response.CodeInternal, "error.quote_failed", err)
		return
	}
	response.Success(c, breakdown)
}

// PostShippingQuote 按地址与小计列出可选配送方式
func (h *Handler) PostShippingQuote(c *gin.Context) {
	var req ShippingQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if !req.Address.HasCountry() {
		respondError(c, response.CodeBadRequest, "error.address_invalid", nil)
		return
	}
	options, err := h.QuoteService.ShippingQuote(c.Request.Context(), req.Address, req.Subtotal)
	if err != nil {
		respondError(c, response.CodeInternal, "error.quote_failed", err)
		return
	}
	response.Success(c, gin.H{"options": options})
}
