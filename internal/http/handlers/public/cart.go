package public

import (
	"strings"

	"github.com/storefront-next/internal/constants"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加购请求
type AddCartItemRequest struct {
	ProductID uint        `json:"product_id" binding:"required"`
	VariantID *uint       `json:"variant_id"`
	Quantity  int         `json:"quantity" binding:"required"`
	Meta      models.JSON `json:"meta"`
}

// UpdateCartItemRequest 修改数量请求，数量为 0 时删除该行
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ApplyDiscountCodeRequest 使用优惠码请求
type ApplyDiscountCodeRequest struct {
	Code string `json:"code"`
}

// SelectShippingMethodRequest 选择配送方式请求
type SelectShippingMethodRequest struct {
	MethodID uint `json:"method_id" binding:"required"`
}

// CartResponse 购物车响应，游客新建时附带令牌
type CartResponse struct {
	Cart       *models.Cart `json:"cart"`
	Created    bool         `json:"created"`
	GuestToken string       `json:"guest_token,omitempty"`
}

// CreateCart 获取或创建当前身份的活跃购物车，无身份时签发新游客令牌
func (h *Handler) CreateCart(c *gin.Context) {
	owner := cartOwner(c)
	issued := ""
	if owner.IsZero() {
		issued = service.NewGuestToken()
		owner = service.CartOwner{GuestToken: issued}
	}

	cart, created, err := h.CartService.GetOrCreate(owner)
	if err != nil {
		respondCartFetchError(c, err)
		return
	}
	if issued != "" {
		c.Header(h.guestTokenHeader(), issued)
	}
	response.Success(c, CartResponse{Cart: cart, Created: created, GuestToken: issued})
}

// GetCart 获取购物车详情
func (h *Handler) GetCart(c *gin.Context) {
	owner, ok := requireCartOwner(c)
	if !ok {
		return
	}
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}
	cart, err := h.CartService.Get(owner, cartID)
	if err != nil {
		respondCartFetchError(c, err)
		return
	}
	response.Success(c, cart)
}

// AddCartItem 加购
func (h *Handler) AddCartItem(c *gin.Context) {
	owner, ok := requireCartOwner(c)
	if !ok {
		return
	}
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	cart, err := h.CartService.AddItem(owner, cartID, service.AddCartItemInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		Meta:      req.Meta,
	})
	if err != nil {
		respondCartItemError(c, err)
		return
	}
	response.Success(c, cart)
}

// UpdateCartItem 修改购物车行数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	owner, ok := requireCartOwner(c)
	if !ok {
		return
	}
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}
	itemID, ok := handlershared.ParsePathUint(c, "item_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.cart_item_invalid", nil)
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	cart, err := h.CartService.UpdateItem(owner, cartID, itemID, *req.Quantity)
	if err != nil {
		respondCartItemError(c, err)
		return
	}
	response.Success(c, cart)
}

// DeleteCartItem 删除购物车行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	owner, ok := requireCartOwner(c)
	if !ok {
		return
	}
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}
	itemID, ok := handlershared.ParsePathUint(c, "item_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.cart_item_invalid", nil)
		return
	}

	cart, err := h.CartService.RemoveItem(owner, cartID, itemID)
	if err != nil {
		respondCartItemError(c, err)
		return
	}
	response.Success(c, cart)
}

// ApplyDiscountCode 使用优惠码，被拒绝时购物车保持无优惠状态
func (h *Handler) ApplyDiscountCode(c *gin.Context) {
	owner, ok := requireCartOwner(c)
	if !ok {
		return
	}
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}
	var req ApplyDiscountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		respondError(c, response.CodeBadRequest, "error.discount_code_required", nil)
		return
	}

	cart, err := h.CartService.ApplyCode(owner, cartID, req.Code)
	if err != nil {
		respondDiscountCodeError(c, err)
		return
	}
	response.Success(c, cart)
}

// RemoveDiscountCode 移除优惠码
func (h *Handler) RemoveDiscountCode(c *gin.Context) {
	owner, ok := requireCartOwner(c)
	if !ok {
		return
	}
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}
	cart, err := h.CartService.ClearCode(owner, cartID)
	if err != nil {
		respondCartFetchError(c, err)
		return
	}
	response.Success(c, cart)
}

// SetCartAddress 设置收货地址
func (h *Handler) SetCartAddress(c *gin.Context) {
	owner, ok := requireCartOwner(c)
	if !ok {
		return
	}
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}
	var req models.Address
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	cart, err := h.CartService.SetAddress(owner, cartID, req)
	if err != nil {
		respondCartShippingError(c, err)
		return
	}
	response.Success(c, cart)
}

// GetShippingOptions 获取购物车可选配送方式
func (h *Handler) GetShippingOptions(c *gin.Context) {
	owner, ok := requireCartOwner(c)
	if !ok {
		return
	}
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}
	options, err := h.CartService.ShippingOptions(owner, cartID)
	if err != nil {
		respondCartShippingError(c, err)
		return
	}
	response.Success(c, gin.H{"options": options})
}

// SelectShippingMethod 选择配送方式
func (h *Handler) SelectShippingMethod(c *gin.Context) {
	owner, ok := requireCartOwner(c)
	if !ok {
		return
	}
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}
	var req SelectShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	cart, err := h.CartService.SelectShippingMethod(owner, cartID, req.MethodID)
	if err != nil {
		respondCartShippingError(c, err)
		return
	}
	response.Success(c, cart)
}

// GetCheckoutQuote 结算前报价，复核已选配送方式
func (h *Handler) GetCheckoutQuote(c *gin.Context) {
	owner, ok := requireCartOwner(c)
	if !ok {
		return
	}
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}
	quote, err := h.CartService.CheckoutQuote(owner, cartID)
	if err != nil {
		respondCartShippingError(c, err)
		return
	}
	response.Success(c, quote)
}

// MergeCart 登录后把游客购物车并入用户购物车
func (h *Handler) MergeCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	token := guestToken(c)
	if token == "" {
		respondError(c, response.CodeBadRequest, "error.guest_token_required", nil)
		return
	}

	cart, err := h.CartService.MergeGuestCart(c.Request.Context(), uid, token)
	if err != nil {
		respondCartMergeError(c, err)
		return
	}
	requestLog(c).Infow("cart_merge_requested", "user_id", uid, "cart_id", cart.ID)
	response.Success(c, cart)
}

func (h *Handler) guestTokenHeader() string {
	if h.Config == nil {
		return constants.DefaultGuestTokenHeader
	}
	return h.Config.Cart.TokenHeader()
}
