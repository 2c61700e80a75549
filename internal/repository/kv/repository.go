package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"aurabags-storefront/internal/domain"
)

// Keys persisted by the storefront.
const (
	KeyCart         = "cart"
	KeyUsers        = "aurabags_users"
	KeyOrders       = "aurabags_orders"
	KeyCurrentUser  = "aurabags_current_user"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"

	// KeySessionPrefix namespaces shopper session records and scoped keys.
	KeySessionPrefix = "session/"
)

// Store persists raw values by key. Get returns domain.ErrNotFound when the
// key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// JSON wraps a Store with JSON encoding. Load never fails: a missing,
// unreadable or corrupt value is reported as absent and logged. LoadStrict
// surfaces store errors for read-modify-write callers.
type JSON struct {
	store  Store
	logger *log.Logger
}

func NewJSON(store Store, logger *log.Logger) *JSON {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &JSON{store: store, logger: logger}
}

// Load decodes the value stored at key into out and reports whether a value
// was found.
func (j *JSON) Load(ctx context.Context, key string, out interface{}) bool {
	raw, err := j.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			j.logger.Printf("kv: read %q: %v", key, err)
		}
		return false
	}
	if len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		j.logger.Printf("kv: decode %q: %v", key, err)
		return false
	}
	return true
}

// LoadStrict is Load for callers that write back what they read. A missing
// or corrupt value is absent; any other store error is returned wrapped in
// domain.ErrUnavailable.
func (j *JSON) LoadStrict(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, err := j.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read %q: %w: %w", key, domain.ErrUnavailable, err)
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		j.logger.Printf("kv: decode %q: %v", key, err)
		return false, nil
	}
	return true, nil
}

// Save encodes value and stores it at key.
func (j *JSON) Save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := j.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (j *JSON) Remove(ctx context.Context, key string) error {
	if err := j.store.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
