package i18n

var messages = map[string]map[string]string{
	LocaleEnUS: {
		"error.bad_request":                 "Invalid request",
		"error.unauthorized":                "Unauthorized",
		"error.forbidden":                   "Forbidden",
		"error.not_found":                   "Resource not found",
		"error.internal":                    "Internal server error",
		"error.too_many_requests":           "Too many requests, please try again later",
		"error.jwt_secret_missing":          "JWT secret is not configured",
		"error.auth_header_missing":         "Authorization header is missing",
		"error.auth_header_invalid":         "Authorization header is invalid",
		"error.token_invalid":               "Token is invalid",
		"error.token_revoked":               "Token has been revoked",
		"error.user_disabled":               "Account is disabled",
		"error.user_id_invalid":             "Invalid user id",
		"error.user_id_type_invalid":        "Invalid user id type",
		"error.admin_id_invalid":            "Invalid admin id",
		"error.admin_id_type_invalid":       "Invalid admin id type",
		"error.login_failed":                "Invalid username or password",
		"error.password_invalid":            "Current password is incorrect",
		"error.password_weak":               "New password is too weak",
		"error.password_min_length":         "Password must be at least %d characters",
		"error.password_require_upper":      "Password must contain an uppercase letter",
		"error.password_require_lower":      "Password must contain a lowercase letter",
		"error.password_require_number":     "Password must contain a digit",
		"error.password_require_special":    "Password must contain a special character",
		"error.guest_token_required":        "A guest token or user token is required",
		"error.cart_id_invalid":             "Invalid cart id",
		"error.cart_not_found":              "Cart not found",
		"error.cart_inactive":               "Cart is no longer active",
		"error.cart_item_not_found":         "Cart item not found",
		"error.cart_item_invalid":           "Invalid cart item",
		"error.cart_fetch_failed":           "Failed to load cart",
		"error.cart_update_failed":          "Failed to update cart",
		"error.cart_merge_failed":           "Failed to merge carts",
		"error.product_not_available":       "Product is not available",
		"error.product_out_of_stock":        "Product is out of stock",
		"error.address_invalid":             "Invalid address",
		"error.discount_code_required":      "Discount code is required",
		"error.discount_code_not_found":     "Discount code not found",
		"error.discount_code_rejected":      "Discount code is not valid for this cart",
		"error.discount_code_exists":        "Discount code already exists",
		"error.discount_not_found":          "Discount not found",
		"error.discount_type_invalid":       "Invalid discount type",
		"error.discount_value_invalid":      "Invalid discount value",
		"error.discount_window_invalid":     "Discount end time must be after start time",
		"error.discount_limit_invalid":      "Invalid redemption limit",
		"error.discount_name_required":      "Discount name is required",
		"error.owner_invalid":               "Exactly one of user id or guest token is required",
		"error.shipping_method_not_found":   "Shipping method not found",
		"error.shipping_method_unavailable": "Shipping method is not available for this cart",
		"error.shipping_zone_not_found":     "Shipping zone not found",
		"error.shipping_zone_in_use":        "Shipping zone is still used by shipping methods",
		"error.shipping_rate_not_found":     "Shipping rate not found",
		"error.shipping_rate_range_invalid": "Shipping rate subtotal range is invalid",
		"error.shipping_config_invalid":     "Invalid shipping configuration",
		"error.tax_profile_not_found":       "Tax profile not found",
		"error.tax_profile_invalid":         "Invalid tax profile",
		"error.quote_failed":                "Failed to calculate quote",
		"error.save_failed":                 "Failed to save",
		"error.delete_failed":               "Failed to delete",
		"error.fetch_failed":                "Failed to load data",
		"error.role_invalid":                "Invalid role",
		"error.authz_update_failed":         "Failed to update permissions",
		"error.rate_limit_unavailable":      "Rate limiter unavailable",
		"error.rate_limited":                "Too many attempts, please retry in %d seconds",
		"error.login_too_many":              "Too many login attempts, please retry in %d seconds",
	},
	LocaleZhCN: {
		"error.bad_request":                 "请求参数错误",
		"error.unauthorized":                "未授权",
		"error.forbidden":                   "无权限访问",
		"error.not_found":                   "资源不存在",
		"error.internal":                    "服务器内部错误",
		"error.too_many_requests":           "请求过于频繁，请稍后再试",
		"error.jwt_secret_missing":          "JWT 密钥未配置",
		"error.auth_header_missing":         "缺少认证头",
		"error.auth_header_invalid":         "认证头格式错误",
		"error.token_invalid":               "Token 无效",
		"error.token_revoked":               "Token 已失效",
		"error.user_disabled":               "账号已禁用",
		"error.user_id_invalid":             "用户 ID 无效",
		"error.user_id_type_invalid":        "用户 ID 类型错误",
		"error.admin_id_invalid":            "管理员 ID 无效",
		"error.admin_id_type_invalid":       "管理员 ID 类型错误",
		"error.login_failed":                "用户名或密码错误",
		"error.password_invalid":            "原密码错误",
		"error.password_weak":               "新密码强度不足",
		"error.password_min_length":         "密码长度至少 %d 位",
		"error.password_require_upper":      "密码需包含大写字母",
		"error.password_require_lower":      "密码需包含小写字母",
		"error.password_require_number":     "密码需包含数字",
		"error.password_require_special":    "密码需包含特殊字符",
		"error.guest_token_required":        "需要游客令牌或用户令牌",
		"error.cart_id_invalid":             "购物车 ID 无效",
		"error.cart_not_found":              "购物车不存在",
		"error.cart_inactive":               "购物车已失效",
		"error.cart_item_not_found":         "购物车商品不存在",
		"error.cart_item_invalid":           "购物车商品参数错误",
		"error.cart_fetch_failed":           "获取购物车失败",
		"error.cart_update_failed":          "更新购物车失败",
		"error.cart_merge_failed":           "合并购物车失败",
		"error.product_not_available":       "商品不可购买",
		"error.product_out_of_stock":        "商品库存不足",
		"error.address_invalid":             "收货地址无效",
		"error.discount_code_required":      "请输入优惠码",
		"error.discount_code_not_found":     "优惠码不存在",
		"error.discount_code_rejected":      "优惠码不适用于当前购物车",
		"error.discount_code_exists":        "优惠码已存在",
		"error.discount_not_found":          "优惠活动不存在",
		"error.discount_type_invalid":       "优惠类型无效",
		"error.discount_value_invalid":      "优惠数值无效",
		"error.discount_window_invalid":     "结束时间必须晚于开始时间",
		"error.discount_limit_invalid":      "使用次数限制无效",
		"error.discount_name_required":      "请填写优惠名称",
		"error.owner_invalid":               "用户 ID 与游客令牌必须且只能提供一个",
		"error.shipping_method_not_found":   "配送方式不存在",
		"error.shipping_method_unavailable": "该配送方式不适用于当前购物车",
		"error.shipping_zone_not_found":     "配送区域不存在",
		"error.shipping_zone_in_use":        "配送区域仍被配送方式引用",
		"error.shipping_rate_not_found":     "运费阶梯不存在",
		"error.shipping_rate_range_invalid": "运费阶梯金额区间无效",
		"error.shipping_config_invalid":     "配送配置无效",
		"error.tax_profile_not_found":       "税率配置不存在",
		"error.tax_profile_invalid":         "税率配置无效",
		"error.quote_failed":                "计算报价失败",
		"error.save_failed":                 "保存失败",
		"error.delete_failed":               "删除失败",
		"error.fetch_failed":                "获取数据失败",
		"error.role_invalid":                "角色无效",
		"error.authz_update_failed":         "更新权限失败",
		"error.rate_limit_unavailable":      "限流服务不可用",
		"error.rate_limited":                "尝试过于频繁，请 %d 秒后重试",
		"error.login_too_many":              "登录尝试过多，请 %d 秒后重试",
	},
}
