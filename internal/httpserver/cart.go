package httpserver

import (
	"net/http"

	"aurabags-storefront/internal/domain"
	cartsvc "aurabags-storefront/internal/service/cart"
	"github.com/gin-gonic/gin"
)

type lineRef struct {
	ProductID string         `json:"productId" binding:"required"`
	Variant   domain.Variant `json:"variant"`
}

type setQuantityRequest struct {
	lineRef
	Quantity int `json:"quantity"`
}

func (h *handlers) respondCart(c *gin.Context, cart domain.Cart, err error) {
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mapCart(cart, scopeOf(c).Cart.Remote(c.Request.Context())))
}

func (h *handlers) getCart(c *gin.Context) {
	cart, err := scopeOf(c).Cart.Get(c.Request.Context())
	h.respondCart(c, cart, err)
}

func (h *handlers) cartCount(c *gin.Context) {
	n, err := scopeOf(c).Cart.ItemCount(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *handlers) addLine(c *gin.Context) {
	var req cartsvc.AddLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cart, err := scopeOf(c).Cart.AddLine(c.Request.Context(), req)
	h.respondCart(c, cart, err)
}

func (h *handlers) setQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cart, err := scopeOf(c).Cart.SetQuantity(c.Request.Context(), req.ProductID, req.Variant, req.Quantity)
	h.respondCart(c, cart, err)
}

func (h *handlers) removeLine(c *gin.Context) {
	var req lineRef
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cart, err := scopeOf(c).Cart.RemoveLine(c.Request.Context(), req.ProductID, req.Variant)
	h.respondCart(c, cart, err)
}

func (h *handlers) clearCart(c *gin.Context) {
	cart, err := scopeOf(c).Cart.Clear(c.Request.Context())
	h.respondCart(c, cart, err)
}
