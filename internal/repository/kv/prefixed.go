package kv

import "context"

type prefixedStore struct {
	store  Store
	prefix string
}

// Prefixed returns a Store that keeps every key under prefix, giving each
// shopper session its own copy of the per-session keys.
func Prefixed(store Store, prefix string) Store {
	return &prefixedStore{store: store, prefix: prefix}
}

func (s *prefixedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.store.Get(ctx, s.prefix+key)
}

func (s *prefixedStore) Set(ctx context.Context, key string, value []byte) error {
	return s.store.Set(ctx, s.prefix+key, value)
}

func (s *prefixedStore) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.prefix+key)
}
