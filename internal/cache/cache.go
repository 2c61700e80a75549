// Package cache holds short-lived copies of remote reads. Each mutation
// declares the set of keys it invalidates; readers of the same key share one
// entry so every surface sees the same value.
package cache

import (
	"context"
	"sync"
	"time"
)

// Key names a cached read.
type Key string

const (
	KeyCart      Key = "cart"
	KeyCartCount Key = "cart.count"
	KeyProfile   Key = "profile"
	KeyOrders    Key = "orders"
)

// Invalidates is the set of keys a mutation makes stale.
type Invalidates []Key

var (
	// CartMutation covers every change to cart contents.
	CartMutation = Invalidates{KeyCart, KeyCartCount}
	// OrderMutation covers order placement and cancellation.
	OrderMutation = Invalidates{KeyOrders}
	// SessionChange covers login and logout.
	SessionChange = Invalidates{KeyCart, KeyCartCount, KeyProfile, KeyOrders}
)

type entry struct {
	value     interface{}
	fetchedAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[Key]entry
}

// New returns a cache whose entries are fresh for ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[Key]entry),
	}
}

// Get returns the cached value for key if it is still fresh.
func (c *Cache) Get(key Key) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key Key, value interface{}) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate drops every key in keys regardless of age.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
}

// Fetch serves key from the cache or calls load and caches its result.
// Errors are not cached.
func Fetch[T any](ctx context.Context, c *Cache, key Key, load func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

// Mutate runs fn and, only if it succeeds, invalidates every key in inv.
func Mutate[T any](ctx context.Context, c *Cache, inv Invalidates, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	c.Invalidate(inv...)
	return v, nil
}
