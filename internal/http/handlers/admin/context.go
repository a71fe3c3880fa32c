package admin

import (
	"strings"
	"time"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "admin_id", "error.admin_id_invalid", "error.admin_id_type_invalid")
}

func currentAdminID(c *gin.Context) uint {
	value, exists := c.Get("admin_id")
	if !exists {
		return 0
	}
	if adminID, ok := value.(uint); ok {
		return adminID
	}
	return 0
}

func currentUsername(c *gin.Context) string {
	value, exists := c.Get("username")
	if !exists {
		return ""
	}
	if username, ok := value.(string); ok {
		return strings.TrimSpace(username)
	}
	return ""
}

func pageQuery(c *gin.Context) (int, int) {
	return handlershared.PageQuery(c)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	return handlershared.ParseTimeNullable(raw)
}

// parseIDParam 读取路径 id，非法时直接返回 400
func parseIDParam(c *gin.Context, key string) (uint, bool) {
	id, ok := handlershared.ParsePathUint(c, key)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return id, true
}
