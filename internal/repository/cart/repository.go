package cart

import (
	"context"
	"strings"

	"aurabags-storefront/internal/domain"
	"aurabags-storefront/internal/repository/kv"
)

// Repository persists the local cart snapshot.
type Repository interface {
	// Load returns the persisted cart and whether one was found. A corrupt
	// snapshot is reported as not found. Lines sharing a product and variant
	// once trimmed are folded into the first one.
	Load(ctx context.Context) (domain.Cart, bool)
	Save(ctx context.Context, cart domain.Cart) error
	// Erase deletes the snapshot entirely.
	Erase(ctx context.Context) error
}

type kvRepo struct {
	store *kv.JSON
}

func NewKV(store *kv.JSON) Repository {
	return &kvRepo{store: store}
}

func (r *kvRepo) Load(ctx context.Context) (domain.Cart, bool) {
	var lines []domain.CartLine
	if !r.store.Load(ctx, kv.KeyCart, &lines) {
		return domain.Cart{}, false
	}
	var cart domain.Cart
	for _, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" || l.Quantity <= 0 {
			continue
		}
		cart.Lines = append(cart.Lines, l)
	}
	return cart.Folded(), true
}

func (r *kvRepo) Save(ctx context.Context, cart domain.Cart) error {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return r.store.Save(ctx, kv.KeyCart, lines)
}

func (r *kvRepo) Erase(ctx context.Context) error {
	return r.store.Remove(ctx, kv.KeyCart)
}
