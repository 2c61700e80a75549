package token

import (
	"context"
	"errors"

	"aurabags-storefront/internal/repository/kv"
)

// Pair is the access/refresh token pair issued by the identity API.
type Pair struct {
	Access  string
	Refresh string
}

// Repository persists the token pair between runs.
type Repository interface {
	Get(ctx context.Context) Pair
	Save(ctx context.Context, p Pair) error
	SaveAccess(ctx context.Context, access string) error
	Clear(ctx context.Context) error
}

type kvRepo struct {
	store *kv.JSON
}

func NewKV(store *kv.JSON) Repository {
	return &kvRepo{store: store}
}

func (r *kvRepo) Get(ctx context.Context) Pair {
	var p Pair
	r.store.Load(ctx, kv.KeyAccessToken, &p.Access)
	r.store.Load(ctx, kv.KeyRefreshToken, &p.Refresh)
	return p
}

func (r *kvRepo) Save(ctx context.Context, p Pair) error {
	if err := r.store.Save(ctx, kv.KeyAccessToken, p.Access); err != nil {
		return err
	}
	return r.store.Save(ctx, kv.KeyRefreshToken, p.Refresh)
}

func (r *kvRepo) SaveAccess(ctx context.Context, access string) error {
	return r.store.Save(ctx, kv.KeyAccessToken, access)
}

func (r *kvRepo) Clear(ctx context.Context) error {
	return errors.Join(
		r.store.Remove(ctx, kv.KeyAccessToken),
		r.store.Remove(ctx, kv.KeyRefreshToken),
	)
}
