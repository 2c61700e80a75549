package httpserver

import (
	"errors"
	"log"
	"net/http"

	"aurabags-storefront/internal/domain"
	"aurabags-storefront/internal/handoff"
	customersvc "aurabags-storefront/internal/service/customer"
	ordersvc "aurabags-storefront/internal/service/order"
	"github.com/gin-gonic/gin"
)

type priceValue struct {
	Type           string `json:"type"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int    `json:"fractionDigits"`
	Formatted      string `json:"formatted"`
}

func usd(cents int64) priceValue {
	return priceValue{
		Type:           "centPrecision",
		CurrencyCode:   "USD",
		CentAmount:     cents,
		FractionDigits: 2,
		Formatted:      handoff.FormatCents(cents),
	}
}

type lineResponse struct {
	ID         string         `json:"id,omitempty"`
	ProductID  string         `json:"productId"`
	Name       string         `json:"name"`
	Image      string         `json:"image,omitempty"`
	Variant    domain.Variant `json:"variant"`
	Quantity   int            `json:"quantity"`
	UnitPrice  priceValue     `json:"unitPrice"`
	TotalPrice priceValue     `json:"totalPrice"`
}

type cartResponse struct {
	Source     string         `json:"source"`
	Lines      []lineResponse `json:"lines"`
	TotalItems int            `json:"totalItems"`
	TotalPrice priceValue     `json:"totalPrice"`
}

func mapLines(lines []domain.CartLine) []lineResponse {
	out := make([]lineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineResponse{
			ID:         l.ID,
			ProductID:  l.ProductID,
			Name:       l.Name,
			Image:      l.Image,
			Variant:    l.Variant,
			Quantity:   l.Quantity,
			UnitPrice:  usd(l.UnitPriceCents),
			TotalPrice: usd(l.TotalCents()),
		})
	}
	return out
}

func mapCart(c domain.Cart, remote bool) cartResponse {
	source := "local"
	if remote {
		source = "account"
	}
	return cartResponse{
		Source:     source,
		Lines:      mapLines(c.Lines),
		TotalItems: c.TotalItems(),
		TotalPrice: usd(c.TotalCents()),
	}
}

type orderResponse struct {
	domain.Order
	Lines      []lineResponse `json:"lines"`
	TotalPrice priceValue     `json:"totalPrice"`
	Cancelable bool           `json:"cancelable"`
}

func mapOrder(o domain.Order) orderResponse {
	return orderResponse{
		Order:      o,
		Lines:      mapLines(o.Lines),
		TotalPrice: usd(o.TotalCents),
		Cancelable: o.Status.Cancellable(),
	}
}

// writeError maps service errors onto status codes. Unexpected errors are
// logged and reported without detail.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	var vErr *ordersvc.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Error(), "reason": vErr.Reason})
	case errors.Is(err, ordersvc.ErrSubmissionFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "order could not be placed, your cart was kept"})
	case errors.Is(err, customersvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transient failure, try again"})
	default:
		logger.Printf("request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
