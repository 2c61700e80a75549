package httpserver

import (
	"net/http"

	"aurabags-storefront/internal/domain"
	customersvc "aurabags-storefront/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type sessionResponse struct {
	Customer *domain.Customer `json:"customer"`
	// CartSynced is false when the guest cart could not be merged into the
	// account cart. The guest cart is kept in that case.
	CartSynced bool `json:"cartSynced"`
}

func (h *handlers) register(c *gin.Context) {
	var req customersvc.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	customer, err := scopeOf(c).Session.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, h.attach(c, customer))
}

func (h *handlers) login(c *gin.Context) {
	var req customersvc.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	customer, err := scopeOf(c).Session.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.attach(c, customer))
}

func (h *handlers) attach(c *gin.Context, customer *domain.Customer) sessionResponse {
	synced := true
	if err := scopeOf(c).Cart.AttachAccount(c.Request.Context()); err != nil {
		h.logger.Printf("attach cart for customer %s: %v", customer.ID, err)
		synced = false
	}
	return sessionResponse{Customer: customer, CartSynced: synced}
}

func (h *handlers) logout(c *gin.Context) {
	if err := scopeOf(c).Session.Logout(c.Request.Context()); err != nil {
		writeError(c, h.logger, err)
		return
	}
	scopeOf(c).Cart.DetachAccount(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	customer, err := scopeOf(c).Session.Current(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *handlers) updateProfile(c *gin.Context) {
	var req customersvc.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	customer, err := scopeOf(c).Session.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}
