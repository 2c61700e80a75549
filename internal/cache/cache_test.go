package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(ttl)
	c.now = clock.now
	return c, clock
}

func TestFetch_ServesFreshEntryWithoutReload(t *testing.T) {
	c, clock := newTestCache(2 * time.Minute)
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, _ := Fetch(context.Background(), c, KeyCart, load)
	clock.t = clock.t.Add(time.Minute)
	v2, _ := Fetch(context.Background(), c, KeyCart, load)
	if v != 1 || v2 != 1 || calls != 1 {
		t.Fatalf("expected a single load, got v=%d v2=%d calls=%d", v, v2, calls)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	v3, _ := Fetch(context.Background(), c, KeyCart, load)
	if v3 != 2 || calls != 2 {
		t.Fatalf("expected reload after ttl, got v3=%d calls=%d", v3, calls)
	}
}

func TestFetch_DoesNotCacheErrors(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	boom := errors.New("boom")
	if _, err := Fetch(context.Background(), c, KeyCart, func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := c.Get(KeyCart); ok {
		t.Fatalf("error result must not be cached")
	}
}

func TestMutate_InvalidatesOnSuccessRegardlessOfAge(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	c.Set(KeyCart, 1)
	c.Set(KeyCartCount, 1)
	c.Set(KeyOrders, 1)

	if _, err := Mutate(context.Background(), c, CartMutation, func(context.Context) (struct{}, error) {
		return struct{}{}, nil
	}); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if _, ok := c.Get(KeyCart); ok {
		t.Fatalf("cart should be invalidated")
	}
	if _, ok := c.Get(KeyCartCount); ok {
		t.Fatalf("count should be invalidated")
	}
	if _, ok := c.Get(KeyOrders); !ok {
		t.Fatalf("orders is outside the invalidation set")
	}
}

func TestMutate_FailureKeepsCache(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	c.Set(KeyCart, 1)
	c.Set(KeyCartCount, 1)

	_, err := Mutate(context.Background(), c, CartMutation, func(context.Context) (int, error) {
		return 0, errors.New("network down")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := c.Get(KeyCart); !ok {
		t.Fatalf("failed mutation must not invalidate the cart")
	}
	if _, ok := c.Get(KeyCartCount); !ok {
		t.Fatalf("failed mutation must not invalidate the count")
	}
}
