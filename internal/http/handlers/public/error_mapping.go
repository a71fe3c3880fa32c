package public

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartCommonErrorRules = []mappedHandlerError{
	{target: service.ErrGuestTokenRequired, code: response.CodeUnauthorized, key: "error.guest_token_required"},
	{target: service.ErrCartNotFound, code: response.CodeNotFound, key: "error.cart_not_found"},
	// 操作他人购物车
	{target: service.ErrCartForbidden, code: response.CodeUnauthorized, key: "error.unauthorized"},
	{target: service.ErrCartInactive, code: response.CodeConflict, key: "error.cart_inactive"},
	{target: models.ErrCartOwnerInvalid, code: response.CodeBadRequest, key: "error.owner_invalid"},
}

var cartItemErrorRules = []mappedHandlerError{
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, key: "error.cart_item_not_found"},
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
	{target: service.ErrProductOutOfStock, code: response.CodeBadRequest, key: "error.product_out_of_stock"},
}

var cartShippingErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidAddress, code: response.CodeBadRequest, key: "error.address_invalid"},
	{target: service.ErrShippingMethodNotFound, code: response.CodeNotFound, key: "error.shipping_method_not_found"},
	{target: service.ErrShippingMethodUnavailable, code: response.CodeUnprocessable, key: "error.shipping_method_unavailable"},
}

var cartMergeErrorRules = []mappedHandlerError{
	{target: service.ErrGuestTokenRequired, code: response.CodeBadRequest, key: "error.guest_token_required"},
	{target: service.ErrCartForbidden, code: response.CodeUnauthorized, key: "error.unauthorized"},
}

func respondCartFetchError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.cart_fetch_failed")
}

func respondCartItemError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(cartCommonErrorRules, cartItemErrorRules), response.CodeInternal, "error.cart_update_failed")
}

func respondCartShippingError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(cartCommonErrorRules, cartShippingErrorRules), response.CodeInternal, "error.cart_update_failed")
}

func respondCartMergeError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartMergeErrorRules, response.CodeInternal, "error.cart_merge_failed")
}

// respondDiscountCodeError 拒绝时附带原因，便于前台展示
func respondDiscountCodeError(c *gin.Context, err error) {
	var rejection *service.DiscountRejection
	if errors.As(err, &rejection) {
		msg := i18n.T(i18n.ResolveLocale(c), "error.discount_code_rejected")
		response.ErrorWithData(c, response.CodeUnprocessable, msg, gin.H{"reason": rejection.Reason})
		return
	}
	rules := concatMappedHandlerErrors(cartCommonErrorRules, []mappedHandlerError{
		{target: service.ErrDiscountCodeNotFound, code: response.CodeNotFound, key: "error.discount_code_not_found"},
	})
	respondWithMappedError(c, err, rules, response.CodeInternal, "error.cart_update_failed")
}
