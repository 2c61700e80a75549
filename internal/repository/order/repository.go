package order

import (
	"context"
	"sort"
	"sync"

	"aurabags-storefront/internal/domain"
	"aurabags-storefront/internal/repository/kv"
)

// Repository is the local order registry.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type kvRepo struct {
	mu    sync.Mutex
	store *kv.JSON
}

func NewKV(store *kv.JSON) Repository {
	return &kvRepo{store: store}
}

// all reads the whole registry. A store failure is returned so callers never
// write back a partial list.
func (r *kvRepo) all(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if _, err := r.store.LoadStrict(ctx, kv.KeyOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *kvRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range orders {
		if existing.ID == o.ID {
			return nil, domain.ErrAlreadyExists
		}
	}
	orders = append(orders, o)
	if err := r.store.Save(ctx, kv.KeyOrders, orders); err != nil {
		return nil, err
	}
	clone := o
	return &clone, nil
}

func (r *kvRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	orders, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.ID == id {
			clone := o
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *kvRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	orders, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0)
	for _, o := range orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *kvRepo) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Status = status
			if err := r.store.Save(ctx, kv.KeyOrders, orders); err != nil {
				return nil, err
			}
			clone := orders[i]
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}
