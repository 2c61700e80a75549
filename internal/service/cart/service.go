// Package cart implements the shopping cart for the current session. Guests
// use the Local backend; signed-in shoppers use the Remote backend when the
// storefront runs against the API.
package cart

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"aurabags-storefront/internal/domain"
)

// Backend is the cart capability shared by the local and remote carts.
type Backend interface {
	Cart(ctx context.Context) (domain.Cart, error)
	ItemCount(ctx context.Context) (int, error)
	AddLine(ctx context.Context, line domain.CartLine) (domain.Cart, error)
	RemoveLine(ctx context.Context, key domain.LineKey) (domain.Cart, error)
	SetQuantity(ctx context.Context, key domain.LineKey, quantity int) (domain.Cart, error)
	Clear(ctx context.Context) (domain.Cart, error)
}

type sessionGate interface {
	IsAuthenticated(ctx context.Context) bool
}

// Service serializes cart operations and routes them to the active backend.
type Service struct {
	mu     sync.Mutex
	local  *Local
	remote *Remote
	gate   sessionGate
	logger *log.Logger
}

// New builds a Service. remote and gate may be nil, in which case every
// operation uses the local cart.
func New(local *Local, remote *Remote, gate sessionGate, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{local: local, remote: remote, gate: gate, logger: logger}
}

// AddLineInput describes a product selection.
type AddLineInput struct {
	ProductID      string         `json:"productId"`
	Name           string         `json:"name"`
	UnitPriceCents int64          `json:"unitPriceCents"`
	Image          string         `json:"image"`
	Quantity       int            `json:"quantity"`
	Variant        domain.Variant `json:"variant"`
}

func (s *Service) backend(ctx context.Context) Backend {
	if s.remote != nil && s.gate != nil && s.gate.IsAuthenticated(ctx) {
		return remoteBackend{r: s.remote}
	}
	return localBackend{l: s.local}
}

// Remote reports whether operations currently go to the account cart.
func (s *Service) Remote(ctx context.Context) bool {
	_, ok := s.backend(ctx).(remoteBackend)
	return ok
}

func (s *Service) Get(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend(ctx).Cart(ctx)
}

func (s *Service) ItemCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend(ctx).ItemCount(ctx)
}

func (s *Service) AddLine(ctx context.Context, in AddLineInput) (domain.Cart, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return domain.Cart{}, fmt.Errorf("productId required: %w", domain.ErrInvalidInput)
	}
	if in.UnitPriceCents < 0 {
		return domain.Cart{}, fmt.Errorf("unitPriceCents must not be negative: %w", domain.ErrInvalidInput)
	}
	line := domain.CartLine{
		ProductID:      productID,
		Name:           strings.TrimSpace(in.Name),
		UnitPriceCents: in.UnitPriceCents,
		Image:          in.Image,
		Quantity:       in.Quantity,
		Variant:        in.Variant.Normalize(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend(ctx).AddLine(ctx, line)
}

func (s *Service) RemoveLine(ctx context.Context, productID string, variant domain.Variant) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend(ctx).RemoveLine(ctx, domain.NewLineKey(productID, variant))
}

func (s *Service) SetQuantity(ctx context.Context, productID string, variant domain.Variant, quantity int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend(ctx).SetQuantity(ctx, domain.NewLineKey(productID, variant), quantity)
}

func (s *Service) Clear(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend(ctx).Clear(ctx)
}

// AttachAccount runs after sign-in. In remote mode a non-empty guest cart is
// merged into the account cart once, then the local snapshot is erased. A
// failed merge keeps the guest cart so nothing is lost.
func (s *Service) AttachAccount(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remote == nil {
		return nil
	}
	s.remote.Reset()
	guest := s.local.Snapshot()
	if guest.IsEmpty() {
		return nil
	}
	if _, err := s.remote.SyncLocalCart(ctx, guest.Lines); err != nil {
		s.logger.Printf("cart: merge guest cart of %d lines: %v", len(guest.Lines), err)
		return fmt.Errorf("sync guest cart: %w", err)
	}
	s.local.Clear(ctx)
	return nil
}

// DetachAccount runs after sign-out and drops cached account reads.
func (s *Service) DetachAccount(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remote != nil {
		s.remote.Reset()
	}
}

type localBackend struct {
	l *Local
}

func (b localBackend) Cart(_ context.Context) (domain.Cart, error) {
	return b.l.Snapshot(), nil
}

func (b localBackend) ItemCount(_ context.Context) (int, error) {
	return b.l.Snapshot().TotalItems(), nil
}

func (b localBackend) AddLine(ctx context.Context, line domain.CartLine) (domain.Cart, error) {
	return b.l.AddLine(ctx, line), nil
}

func (b localBackend) RemoveLine(ctx context.Context, key domain.LineKey) (domain.Cart, error) {
	return b.l.RemoveLine(ctx, key), nil
}

func (b localBackend) SetQuantity(ctx context.Context, key domain.LineKey, quantity int) (domain.Cart, error) {
	return b.l.SetQuantity(ctx, key, quantity), nil
}

func (b localBackend) Clear(ctx context.Context) (domain.Cart, error) {
	return b.l.Clear(ctx), nil
}
