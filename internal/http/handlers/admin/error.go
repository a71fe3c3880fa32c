package admin

import (
	"errors"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

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

var discountErrorRules = []mappedHandlerError{
	{target: service.ErrDiscountNotFound, code: response.CodeNotFound, key: "error.discount_not_found"},
	{target: service.ErrDiscountCodeNotFound, code: response.CodeNotFound, key: "error.discount_code_not_found"},
	{target: service.ErrDiscountCodeExists, code: response.CodeConflict, key: "error.discount_code_exists"},
	{target: models.ErrDiscountCodeRequired, code: response.CodeBadRequest, key: "error.discount_code_required"},
	{target: models.ErrInvalidDiscountType, code: response.CodeBadRequest, key: "error.discount_type_invalid"},
	{target: models.ErrInvalidDiscountValue, code: response.CodeBadRequest, key: "error.discount_value_invalid"},
	{target: models.ErrInvalidDiscountRange, code: response.CodeBadRequest, key: "error.discount_window_invalid"},
	{target: models.ErrInvalidLimit, code: response.CodeBadRequest, key: "error.discount_limit_invalid"},
	{target: models.ErrNameRequired, code: response.CodeBadRequest, key: "error.discount_name_required"},
	{target: models.ErrCartOwnerInvalid, code: response.CodeBadRequest, key: "error.owner_invalid"},
}

var taxProfileErrorRules = []mappedHandlerError{
	{target: service.ErrTaxProfileNotFound, code: response.CodeNotFound, key: "error.tax_profile_not_found"},
	{target: models.ErrNameRequired, code: response.CodeBadRequest, key: "error.tax_profile_invalid"},
	{target: models.ErrCountryCodeRequired, code: response.CodeBadRequest, key: "error.tax_profile_invalid"},
	{target: models.ErrInvalidTaxRate, code: response.CodeBadRequest, key: "error.tax_profile_invalid"},
}

var shippingErrorRules = []mappedHandlerError{
	{target: service.ErrShippingZoneNotFound, code: response.CodeNotFound, key: "error.shipping_zone_not_found"},
	{target: service.ErrShippingZoneInUse, code: response.CodeConflict, key: "error.shipping_zone_in_use"},
	{target: service.ErrShippingMethodNotFound, code: response.CodeNotFound, key: "error.shipping_method_not_found"},
	{target: service.ErrShippingRateNotFound, code: response.CodeNotFound, key: "error.shipping_rate_not_found"},
	{target: models.ErrInvalidSubtotalRange, code: response.CodeBadRequest, key: "error.shipping_rate_range_invalid"},
	{target: models.ErrInvalidShippingRate, code: response.CodeBadRequest, key: "error.shipping_config_invalid"},
	{target: models.ErrNameRequired, code: response.CodeBadRequest, key: "error.shipping_config_invalid"},
}

func respondDiscountError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, discountErrorRules, response.CodeInternal, fallbackKey)
}

func respondTaxProfileError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, taxProfileErrorRules, response.CodeInternal, fallbackKey)
}

func respondShippingError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, shippingErrorRules, response.CodeInternal, fallbackKey)
}
