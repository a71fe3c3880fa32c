package public

import (
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextKeyUserID 可选用户身份（由购物车身份中间件写入）
	ContextKeyUserID = "user_id"
	// ContextKeyGuestToken 游客令牌（由购物车身份中间件写入）
	ContextKeyGuestToken = "guest_token"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, ContextKeyUserID, "error.user_id_invalid", "error.user_id_type_invalid")
}

func optionalUserID(c *gin.Context) uint {
	value, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0
	}
	if id, ok := value.(uint); ok {
		return id
	}
	return 0
}

func guestToken(c *gin.Context) string {
	value, exists := c.Get(ContextKeyGuestToken)
	if !exists {
		return ""
	}
	token, _ := value.(string)
	return strings.TrimSpace(token)
}

// cartOwner 用户身份优先；未登录时使用游客令牌
func cartOwner(c *gin.Context) service.CartOwner {
	if uid := optionalUserID(c); uid != 0 {
		return service.CartOwner{UserID: uid}
	}
	return service.CartOwner{GuestToken: guestToken(c)}
}

func requireCartOwner(c *gin.Context) (service.CartOwner, bool) {
	owner := cartOwner(c)
	if owner.IsZero() {
		respondError(c, response.CodeUnauthorized, "error.guest_token_required", nil)
		return owner, false
	}
	return owner, true
}

func parseCartID(c *gin.Context) (uint, bool) {
	id, ok := handlershared.ParsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.cart_id_invalid", nil)
		return 0, false
	}
	return id, true
}
