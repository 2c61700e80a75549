package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"aurabags-storefront/internal/domain"
	"aurabags-storefront/internal/handoff"
	"aurabags-storefront/internal/repository/kv"
	cartsvc "aurabags-storefront/internal/service/cart"
	customersvc "aurabags-storefront/internal/service/customer"
	ordersvc "aurabags-storefront/internal/service/order"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type cartService interface {
	Get(ctx context.Context) (domain.Cart, error)
	ItemCount(ctx context.Context) (int, error)
	AddLine(ctx context.Context, in cartsvc.AddLineInput) (domain.Cart, error)
	RemoveLine(ctx context.Context, productID string, variant domain.Variant) (domain.Cart, error)
	SetQuantity(ctx context.Context, productID string, variant domain.Variant, quantity int) (domain.Cart, error)
	Clear(ctx context.Context) (domain.Cart, error)
	AttachAccount(ctx context.Context) error
	DetachAccount(ctx context.Context)
	Remote(ctx context.Context) bool
}

type orderService interface {
	Checkout(ctx context.Context, in ordersvc.CheckoutInput) (*ordersvc.Result, error)
	List(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
	Status(ctx context.Context, id string) (domain.OrderTracking, error)
	SupportLink(ctx context.Context, id string) (string, error)
}

// Scope holds one shopper session's services.
type Scope struct {
	Cart    cartService
	Session customersvc.Session
	Orders  orderService
}

type sessionTokens interface {
	Issue(ctx context.Context) (token, sessionID string, err error)
	LookupByToken(ctx context.Context, token string) (string, error)
	TTL() time.Duration
}

type scopeSource interface {
	Get(ctx context.Context, sessionID string) (Scope, error)
}

// Deps are the services behind the routes.
type Deps struct {
	Sessions    sessionTokens
	Scopes      scopeSource
	Linker      *handoff.Linker
	Store       kv.Store
	CORSOrigins []string
	// SecureCookies marks the session cookie Secure; set when served over TLS.
	SecureCookies bool
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil || deps.Scopes == nil || deps.Linker == nil {
		return nil, errors.New("httpserver: session, scope and handoff dependencies are required")
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", sessionHeader},
			ExposeHeaders:    []string{sessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Store))

	h := &handlers{logger: logger, deps: deps}

	router.POST("/handoff/quick-buy", h.quickBuy)

	scoped := router.Group("/", h.session)
	cart := scoped.Group("/cart")
	cart.GET("", h.getCart)
	cart.GET("/count", h.cartCount)
	cart.POST("/lines", h.addLine)
	cart.PUT("/lines", h.setQuantity)
	cart.DELETE("/lines", h.removeLine)
	cart.DELETE("", h.clearCart)

	auth := scoped.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.POST("/logout", h.logout)
	scoped.GET("/me", h.me)
	scoped.PATCH("/me", h.updateProfile)

	scoped.POST("/checkout", h.checkout)
	orders := scoped.Group("/orders")
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)
	orders.GET("/:id/status", h.orderStatus)
	orders.POST("/:id/cancel", h.cancelOrder)
	orders.GET("/:id/support-link", h.supportLink)

	return router, nil
}

type handlers struct {
	logger *log.Logger
	deps   Deps
}
