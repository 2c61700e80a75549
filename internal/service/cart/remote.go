package cart

import (
	"context"
	"fmt"

	"aurabags-storefront/internal/cache"
	"aurabags-storefront/internal/domain"
)

type remoteClient interface {
	GetCart(ctx context.Context) (domain.Cart, error)
	CartCount(ctx context.Context) (int, error)
	AddCartItem(ctx context.Context, line domain.CartLine) (domain.CartLine, error)
	UpdateCartItem(ctx context.Context, lineID string, quantity int) (domain.CartLine, error)
	RemoveCartItem(ctx context.Context, lineID string) error
	ClearCart(ctx context.Context) error
	SyncCart(ctx context.Context, lines []domain.CartLine) (domain.Cart, error)
}

// Remote is the account cart held by the API. Reads go through the cache;
// each successful mutation invalidates the cart and count entries, failed
// mutations leave them untouched.
type Remote struct {
	client remoteClient
	cache  *cache.Cache
}

func NewRemote(client remoteClient, c *cache.Cache) *Remote {
	return &Remote{client: client, cache: c}
}

func (r *Remote) FetchCart(ctx context.Context) (domain.Cart, error) {
	c, err := cache.Fetch(ctx, r.cache, cache.KeyCart, r.client.GetCart)
	if err != nil {
		return domain.Cart{}, err
	}
	return c.Clone(), nil
}

func (r *Remote) ItemCount(ctx context.Context) (int, error) {
	return cache.Fetch(ctx, r.cache, cache.KeyCartCount, r.client.CartCount)
}

func (r *Remote) AddItem(ctx context.Context, line domain.CartLine) (domain.CartLine, error) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	return cache.Mutate(ctx, r.cache, cache.CartMutation, func(ctx context.Context) (domain.CartLine, error) {
		return r.client.AddCartItem(ctx, line)
	})
}

// UpdateItem sets the quantity of a server line. Zero or less removes it.
func (r *Remote) UpdateItem(ctx context.Context, lineID string, quantity int) (domain.CartLine, error) {
	if quantity <= 0 {
		return domain.CartLine{}, r.RemoveItem(ctx, lineID)
	}
	return cache.Mutate(ctx, r.cache, cache.CartMutation, func(ctx context.Context) (domain.CartLine, error) {
		return r.client.UpdateCartItem(ctx, lineID, quantity)
	})
}

func (r *Remote) RemoveItem(ctx context.Context, lineID string) error {
	_, err := cache.Mutate(ctx, r.cache, cache.CartMutation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.client.RemoveCartItem(ctx, lineID)
	})
	return err
}

func (r *Remote) ClearCart(ctx context.Context) error {
	_, err := cache.Mutate(ctx, r.cache, cache.CartMutation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.client.ClearCart(ctx)
	})
	return err
}

// SyncLocalCart merges guest lines into the account cart.
func (r *Remote) SyncLocalCart(ctx context.Context, lines []domain.CartLine) (domain.Cart, error) {
	return cache.Mutate(ctx, r.cache, cache.CartMutation, func(ctx context.Context) (domain.Cart, error) {
		return r.client.SyncCart(ctx, lines)
	})
}

// Reset drops every cached read tied to the session.
func (r *Remote) Reset() {
	r.cache.Invalidate(cache.SessionChange...)
}

// lineID resolves a line key to the server line id. ok is false when the
// cart has no such line.
func (r *Remote) lineID(ctx context.Context, key domain.LineKey) (string, bool, error) {
	c, err := r.FetchCart(ctx)
	if err != nil {
		return "", false, err
	}
	idx := c.Find(key)
	if idx < 0 {
		return "", false, nil
	}
	if c.Lines[idx].ID == "" {
		return "", false, fmt.Errorf("cart line %s has no server id: %w", key, domain.ErrUnavailable)
	}
	return c.Lines[idx].ID, true, nil
}

type remoteBackend struct {
	r *Remote
}

func (b remoteBackend) Cart(ctx context.Context) (domain.Cart, error) {
	return b.r.FetchCart(ctx)
}

func (b remoteBackend) ItemCount(ctx context.Context) (int, error) {
	return b.r.ItemCount(ctx)
}

func (b remoteBackend) AddLine(ctx context.Context, line domain.CartLine) (domain.Cart, error) {
	if _, err := b.r.AddItem(ctx, line); err != nil {
		return domain.Cart{}, err
	}
	return b.r.FetchCart(ctx)
}

func (b remoteBackend) RemoveLine(ctx context.Context, key domain.LineKey) (domain.Cart, error) {
	id, ok, err := b.r.lineID(ctx, key)
	if err != nil {
		return domain.Cart{}, err
	}
	if !ok {
		return b.r.FetchCart(ctx)
	}
	if err := b.r.RemoveItem(ctx, id); err != nil {
		return domain.Cart{}, err
	}
	return b.r.FetchCart(ctx)
}

func (b remoteBackend) SetQuantity(ctx context.Context, key domain.LineKey, quantity int) (domain.Cart, error) {
	id, ok, err := b.r.lineID(ctx, key)
	if err != nil {
		return domain.Cart{}, err
	}
	if !ok {
		return b.r.FetchCart(ctx)
	}
	if _, err := b.r.UpdateItem(ctx, id, quantity); err != nil {
		return domain.Cart{}, err
	}
	return b.r.FetchCart(ctx)
}

func (b remoteBackend) Clear(ctx context.Context) (domain.Cart, error) {
	if err := b.r.ClearCart(ctx); err != nil {
		return domain.Cart{}, err
	}
	return domain.Cart{}, nil
}
