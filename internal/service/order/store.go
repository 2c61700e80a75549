package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"aurabags-storefront/internal/cache"
	"aurabags-storefront/internal/domain"
	"aurabags-storefront/internal/remote"
	orderrepo "aurabags-storefront/internal/repository/order"
)

// Store persists orders for the signed-in customer.
type Store interface {
	// Create persists draft and returns the stored order with its id.
	Create(ctx context.Context, draft domain.Order) (*domain.Order, error)
	List(ctx context.Context, customerID string) ([]domain.Order, error)
	Get(ctx context.Context, customerID, id string) (*domain.Order, error)
	Cancel(ctx context.Context, customerID, id string) (*domain.Order, error)
	Status(ctx context.Context, customerID, id string) (domain.OrderTracking, error)
}

// LocalStore keeps orders in the key-value registry with ids of the form
// ORD-<unix millis>.
type LocalStore struct {
	repo orderrepo.Repository
	now  func() time.Time
}

func NewLocalStore(repo orderrepo.Repository) *LocalStore {
	return &LocalStore{repo: repo, now: time.Now}
}

func (s *LocalStore) Create(ctx context.Context, draft domain.Order) (*domain.Order, error) {
	created := s.now().UTC()
	draft.CreatedAt = created
	if draft.Status == "" {
		draft.Status = domain.OrderPending
	}
	if draft.PaymentStatus == "" {
		draft.PaymentStatus = domain.PaymentPending
	}
	millis := created.UnixMilli()
	for i := 0; i < 5; i++ {
		draft.ID = "ORD-" + strconv.FormatInt(millis+int64(i), 10)
		o, err := s.repo.Create(ctx, draft)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
	}
	return nil, errors.New("order id collision")
}

func (s *LocalStore) List(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *LocalStore) Get(ctx context.Context, customerID, id string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *LocalStore) Cancel(ctx context.Context, customerID, id string) (*domain.Order, error) {
	o, err := s.Get(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.Cancellable() {
		return nil, fmt.Errorf("order %s is %s and can no longer be cancelled: %w", id, o.Status, domain.ErrInvalidInput)
	}
	return s.repo.SetStatus(ctx, id, domain.OrderCancelled)
}

func (s *LocalStore) Status(ctx context.Context, customerID, id string) (domain.OrderTracking, error) {
	o, err := s.Get(ctx, customerID, id)
	if err != nil {
		return domain.OrderTracking{}, err
	}
	return domain.OrderTracking{Status: o.Status, TrackingNumber: o.TrackingNumber}, nil
}

type remoteClient interface {
	CreateOrder(ctx context.Context, draft domain.Order) (*domain.Order, error)
	ListOrders(ctx context.Context, page int) (remote.OrderPage, error)
	GetOrder(ctx context.Context, number string) (*domain.Order, error)
	CancelOrder(ctx context.Context, number string) error
	OrderStatus(ctx context.Context, number string) (domain.OrderTracking, error)
}

// maxOrderPages bounds how much history List pulls in one call.
const maxOrderPages = 20

// RemoteStore keeps orders on the API, which scopes them to the token's
// account; customerID is informational.
type RemoteStore struct {
	client remoteClient
	cache  *cache.Cache
}

func NewRemoteStore(client remoteClient, c *cache.Cache) *RemoteStore {
	return &RemoteStore{client: client, cache: c}
}

func (s *RemoteStore) Create(ctx context.Context, draft domain.Order) (*domain.Order, error) {
	return cache.Mutate(ctx, s.cache, cache.OrderMutation, func(ctx context.Context) (*domain.Order, error) {
		o, err := s.client.CreateOrder(ctx, draft)
		if err != nil {
			return nil, err
		}
		if len(o.Lines) == 0 {
			o.Lines = draft.Lines
		}
		if o.TotalCents == 0 {
			o.TotalCents = draft.TotalCents
		}
		if o.CustomerID == "" {
			o.CustomerID = draft.CustomerID
		}
		return o, nil
	})
}

func (s *RemoteStore) List(ctx context.Context, _ string) ([]domain.Order, error) {
	orders, err := cache.Fetch(ctx, s.cache, cache.KeyOrders, func(ctx context.Context) ([]domain.Order, error) {
		out := make([]domain.Order, 0)
		for page := 1; page <= maxOrderPages; page++ {
			res, err := s.client.ListOrders(ctx, page)
			if err != nil {
				return nil, err
			}
			out = append(out, res.Orders...)
			if !res.HasNext {
				break
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Order(nil), orders...), nil
}

func (s *RemoteStore) Get(ctx context.Context, _, id string) (*domain.Order, error) {
	return s.client.GetOrder(ctx, id)
}

func (s *RemoteStore) Cancel(ctx context.Context, _, id string) (*domain.Order, error) {
	_, err := cache.Mutate(ctx, s.cache, cache.OrderMutation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.client.CancelOrder(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return s.client.GetOrder(ctx, id)
}

func (s *RemoteStore) Status(ctx context.Context, _, id string) (domain.OrderTracking, error) {
	return s.client.OrderStatus(ctx, id)
}
