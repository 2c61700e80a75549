package httpserver

import (
	"net/http"
	"strings"

	"aurabags-storefront/internal/handoff"
	ordersvc "aurabags-storefront/internal/service/order"
	"github.com/gin-gonic/gin"
)

type checkoutResponse struct {
	Order      orderResponse `json:"order"`
	Summary    string        `json:"summary"`
	HandoffURL string        `json:"handoffUrl"`
}

func (h *handlers) checkout(c *gin.Context) {
	var req ordersvc.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	res, err := scopeOf(c).Orders.Checkout(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, checkoutResponse{
		Order:      mapOrder(res.Order),
		Summary:    res.Summary,
		HandoffURL: res.HandoffURL,
	})
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := scopeOf(c).Orders.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	results := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		results = append(results, mapOrder(o))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := scopeOf(c).Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mapOrder(*o))
}

func (h *handlers) orderStatus(c *gin.Context) {
	tracking, err := scopeOf(c).Orders.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tracking)
}

func (h *handlers) cancelOrder(c *gin.Context) {
	o, err := scopeOf(c).Orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mapOrder(*o))
}

func (h *handlers) supportLink(c *gin.Context) {
	url, err := scopeOf(c).Orders.SupportLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

type quickBuyRequest struct {
	Name       string `json:"name" binding:"required"`
	Price      string `json:"price"`
	PriceCents int64  `json:"priceCents"`
}

// quickBuy builds a product enquiry link without touching the cart. Price may
// be sent preformatted or in cents.
func (h *handlers) quickBuy(c *gin.Context) {
	var req quickBuyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	price := strings.TrimSpace(req.Price)
	if price == "" {
		price = handoff.FormatCents(req.PriceCents)
	}
	msg := handoff.QuickBuy(strings.TrimSpace(req.Name), price)
	c.JSON(http.StatusOK, gin.H{"message": msg, "url": h.deps.Linker.URL(msg)})
}
