package customer

import (
	"context"
	"strings"
	"sync"

	"aurabags-storefront/internal/domain"
	"aurabags-storefront/internal/repository/kv"
)

// Repository persists the local customer registry and the current session.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)

	CurrentSession(ctx context.Context) (*domain.Customer, bool)
	SetCurrentSession(ctx context.Context, c domain.Customer) error
	ClearCurrentSession(ctx context.Context) error
}

// Registry is the customer list shared by every shopper session.
type Registry struct {
	mu    sync.Mutex
	store *kv.JSON
}

func NewRegistry(store *kv.JSON) *Registry {
	return &Registry{store: store}
}

// NewKV keeps the registry and the current-session pointer in one store.
func NewKV(store *kv.JSON) Repository {
	return Scoped(NewRegistry(store), store)
}

// Scoped binds the shared registry to one session's store, which holds the
// current-session pointer.
func Scoped(registry *Registry, session *kv.JSON) Repository {
	return &scopedRepo{Registry: registry, session: session}
}

// all reads the whole registry. A store failure is returned so callers never
// write back a partial list.
func (r *Registry) all(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	if _, err := r.store.LoadStrict(ctx, kv.KeyUsers, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *Registry) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	customers, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range customers {
		if strings.EqualFold(existing.Email, c.Email) {
			return nil, domain.ErrAlreadyExists
		}
	}
	customers = append(customers, c)
	if err := r.store.Save(ctx, kv.KeyUsers, customers); err != nil {
		return nil, err
	}
	clone := c
	return &clone, nil
}

func (r *Registry) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	customers, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		if strings.EqualFold(c.Email, email) {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *Registry) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	customers, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		if c.ID == id {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *Registry) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	customers, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range customers {
		if customers[i].ID == c.ID {
			customers[i] = c
			if err := r.store.Save(ctx, kv.KeyUsers, customers); err != nil {
				return nil, err
			}
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

type scopedRepo struct {
	*Registry
	session *kv.JSON
}

func (r *scopedRepo) CurrentSession(ctx context.Context) (*domain.Customer, bool) {
	var c domain.Customer
	if !r.session.Load(ctx, kv.KeyCurrentUser, &c) || c.ID == "" {
		return nil, false
	}
	return &c, true
}

func (r *scopedRepo) SetCurrentSession(ctx context.Context, c domain.Customer) error {
	return r.session.Save(ctx, kv.KeyCurrentUser, c.Public())
}

func (r *scopedRepo) ClearCurrentSession(ctx context.Context) error {
	return r.session.Remove(ctx, kv.KeyCurrentUser)
}
