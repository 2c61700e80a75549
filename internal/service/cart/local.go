package cart

import (
	"context"
	"io"
	"log"
	"strings"

	"aurabags-storefront/internal/domain"
	cartrepo "aurabags-storefront/internal/repository/cart"
	"github.com/google/uuid"
)

// Local is the guest cart: an in-memory Cart mirrored to the key-value store
// after every transition. Every operation is total; persistence failures are
// logged and the in-memory state stays authoritative.
type Local struct {
	repo   cartrepo.Repository
	logger *log.Logger
	newID  func() string
	cart   domain.Cart
}

// NewLocal rehydrates the cart from repo. A missing or corrupt snapshot
// yields an empty cart.
func NewLocal(ctx context.Context, repo cartrepo.Repository, logger *log.Logger) *Local {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	l := &Local{
		repo:   repo,
		logger: logger,
		newID:  uuid.NewString,
	}
	l.Rehydrate(ctx)
	return l
}

// Rehydrate replaces the in-memory cart with the persisted snapshot, folding
// any lines that share a product and variant.
func (l *Local) Rehydrate(ctx context.Context) domain.Cart {
	c, ok := l.repo.Load(ctx)
	if !ok {
		c = domain.Cart{}
	}
	l.cart = c.Folded()
	return l.cart.Clone()
}

func (l *Local) Snapshot() domain.Cart {
	return l.cart.Clone()
}

// AddLine merges line into the cart by product and variant. A non-positive
// quantity adds one unit.
func (l *Local) AddLine(ctx context.Context, line domain.CartLine) domain.Cart {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	line.ProductID = strings.TrimSpace(line.ProductID)
	if line.ID == "" {
		line.ID = l.newID()
	}
	return l.apply(ctx, l.cart.WithLine(line))
}

func (l *Local) RemoveLine(ctx context.Context, key domain.LineKey) domain.Cart {
	return l.apply(ctx, l.cart.WithoutLine(key))
}

// SetQuantity replaces the quantity of the matching line; zero or less
// removes it.
func (l *Local) SetQuantity(ctx context.Context, key domain.LineKey, quantity int) domain.Cart {
	return l.apply(ctx, l.cart.WithQuantity(key, quantity))
}

// Clear empties the cart and erases the persisted snapshot.
func (l *Local) Clear(ctx context.Context) domain.Cart {
	l.cart = domain.Cart{}
	if err := l.repo.Erase(ctx); err != nil {
		l.logger.Printf("cart: erase snapshot: %v", err)
	}
	return domain.Cart{}
}

func (l *Local) apply(ctx context.Context, next domain.Cart) domain.Cart {
	l.cart = next
	if err := l.repo.Save(ctx, next); err != nil {
		l.logger.Printf("cart: persist snapshot: %v", err)
	}
	return l.cart.Clone()
}
