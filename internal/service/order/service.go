// Package order runs checkout and exposes the signed-in customer's order
// history.
package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"aurabags-storefront/internal/domain"
	"aurabags-storefront/internal/handoff"
	"aurabags-storefront/internal/service/customer"
)

// State is the position of the checkout flow.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Reason names the checkout precondition that failed.
type Reason string

const (
	ReasonEmptyCart        Reason = "empty_cart"
	ReasonMissingAddress   Reason = "missing_address"
	ReasonNotAuthenticated Reason = "not_authenticated"
)

var reasonMessages = map[Reason]string{
	ReasonEmptyCart:        "cart is empty",
	ReasonMissingAddress:   "shipping address needs at least a street and a city",
	ReasonNotAuthenticated: "sign in to place an order",
}

// ValidationError reports a failed checkout precondition. No order is
// created and the cart is untouched.
type ValidationError struct {
	Reason Reason
}

func (e *ValidationError) Error() string {
	return "checkout: " + reasonMessages[e.Reason]
}

// ErrSubmissionFailed wraps any failure to persist a validated order.
var ErrSubmissionFailed = errors.New("order submission failed")

type cartService interface {
	Get(ctx context.Context) (domain.Cart, error)
	Clear(ctx context.Context) (domain.Cart, error)
}

// Service runs one checkout at a time.
type Service struct {
	mu       sync.Mutex
	state    State
	store    Store
	cart     cartService
	gate     customer.Gate
	linker   *handoff.Linker
	notifier handoff.Notifier
	logger   *log.Logger

	dispatcher    *Dispatcher
	async         func(func())
	notifyTimeout time.Duration
}

// New builds a Service. notifier may be nil.
func New(store Store, cart cartService, gate customer.Gate, linker *handoff.Linker, notifier handoff.Notifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Service{
		state:         StateIdle,
		store:         store,
		cart:          cart,
		gate:          gate,
		linker:        linker,
		notifier:      notifier,
		logger:        logger,
		notifyTimeout: 10 * time.Second,
	}
	s.UseDispatcher(NewDispatcher())
	return s
}

// UseDispatcher routes notifications through d, so one Close can drain the
// notifications of every session.
func (s *Service) UseDispatcher(d *Dispatcher) *Service {
	s.dispatcher = d
	s.async = func(f func()) {
		if !d.Go(f) {
			s.logger.Printf("order: notification dropped during shutdown")
		}
	}
	return s
}

// Wait blocks until notifications started by this Service's dispatcher are
// done and refuses new ones.
func (s *Service) Wait() {
	s.dispatcher.Close()
}

// CheckoutInput captures fields expected by the checkout endpoint.
type CheckoutInput struct {
	ShippingAddress domain.Address `json:"shippingAddress"`
	Notes           string         `json:"notes"`
	PaymentMethod   string         `json:"paymentMethod"`
	Phone           string         `json:"phone"`
}

// Result is a placed order with the message handed to the store.
type Result struct {
	Order      domain.Order `json:"order"`
	Summary    string       `json:"summary"`
	HandoffURL string       `json:"handoffUrl"`
}

// State returns where the last checkout attempt ended.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Checkout validates the cart, address and session, persists a snapshot of
// the cart as an order, clears the cart and returns the handoff link. On any
// failure the cart is left as it was.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateValidating

	cart, err := s.cart.Get(ctx)
	if err != nil {
		s.state = StateFailed
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, s.reject(ReasonEmptyCart)
	}
	addr := trimAddress(in.ShippingAddress)
	if !addr.Complete() {
		return nil, s.reject(ReasonMissingAddress)
	}
	if s.gate == nil || !s.gate.IsAuthenticated(ctx) {
		return nil, s.reject(ReasonNotAuthenticated)
	}
	shopper, err := s.gate.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, s.reject(ReasonNotAuthenticated)
		}
		s.state = StateFailed
		return nil, fmt.Errorf("read session: %w", err)
	}

	s.state = StateSubmitting
	draft := domain.SnapshotCart(cart)
	draft.CustomerID = shopper.ID
	draft.ShippingAddress = addr
	draft.Notes = strings.TrimSpace(in.Notes)
	draft.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	draft.Phone = strings.TrimSpace(in.Phone)
	if draft.Phone == "" {
		draft.Phone = shopper.Phone
	}

	placed, err := s.store.Create(ctx, draft)
	if err != nil {
		s.state = StateFailed
		s.logger.Printf("order: submit %d lines for %s: %v", len(draft.Lines), shopper.ID, err)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	s.state = StateSucceeded

	if _, err := s.cart.Clear(ctx); err != nil {
		s.logger.Printf("order: clear cart after %s: %v", placed.ID, err)
	}

	summary := handoff.OrderSummary(*placed, shopper)
	res := &Result{Order: *placed, Summary: summary}
	if s.linker != nil {
		res.HandoffURL = s.linker.URL(summary)
	}
	s.notify(*placed)
	return res, nil
}

func (s *Service) reject(reason Reason) error {
	s.state = StateFailed
	return &ValidationError{Reason: reason}
}

func (s *Service) notify(o domain.Order) {
	if s.notifier == nil {
		return
	}
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.OrderPlaced(ctx, o); err != nil {
			s.logger.Printf("order: notify %s: %v", o.ID, err)
		}
	})
}

func (s *Service) customerID(ctx context.Context) (string, error) {
	if s.gate == nil {
		return "", domain.ErrUnauthorized
	}
	c, err := s.gate.Current(ctx)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// List returns the customer's orders, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	id, err := s.customerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, id)
}

func (s *Service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	id, err := s.customerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id, strings.TrimSpace(orderID))
}

// Cancel moves an order to cancelled while it has not shipped.
func (s *Service) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	id, err := s.customerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Cancel(ctx, id, strings.TrimSpace(orderID))
}

func (s *Service) Status(ctx context.Context, orderID string) (domain.OrderTracking, error) {
	id, err := s.customerID(ctx)
	if err != nil {
		return domain.OrderTracking{}, err
	}
	return s.store.Status(ctx, id, strings.TrimSpace(orderID))
}

// SupportLink returns a chat link asking about one of the customer's orders.
func (s *Service) SupportLink(ctx context.Context, orderID string) (string, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	if s.linker == nil {
		return "", fmt.Errorf("no handoff number configured: %w", domain.ErrUnavailable)
	}
	return s.linker.URL(handoff.Support(o.ID)), nil
}

func trimAddress(a domain.Address) domain.Address {
	return domain.Address{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}
