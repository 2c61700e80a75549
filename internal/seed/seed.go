// Package seed loads a demo shopper and order history into the local store
// for manual testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aurabags-storefront/internal/domain"
	customerrepo "aurabags-storefront/internal/repository/customer"
	orderrepo "aurabags-storefront/internal/repository/order"
	customersvc "aurabags-storefront/internal/service/customer"
)

// Demo account credentials.
const (
	DemoEmail    = "demo@aurabags.test"
	DemoPassword = "AuraDemo1"
)

type orderSeed struct {
	ID     string
	Status domain.OrderStatus
	Lines  []domain.CartLine
	Placed time.Time
}

// Apply creates the demo customer and their past orders. It is idempotent:
// existing records are left untouched. The session is signed out afterwards.
func Apply(ctx context.Context, customers customerrepo.Repository, orders orderrepo.Repository) error {
	customer, err := ensureCustomer(ctx, customers)
	if err != nil {
		return fmt.Errorf("ensure customer: %w", err)
	}

	seeds := []orderSeed{
		{
			ID:     "ORD-DEMO-1",
			Status: domain.OrderDelivered,
			Placed: time.Date(2026, 1, 12, 14, 30, 0, 0, time.UTC),
			Lines: []domain.CartLine{
				{ID: "demo-l1", ProductID: "aura-tote", Name: "Aura Leather Tote", UnitPriceCents: 12999, Quantity: 1, Variant: domain.Variant{Color: "Black"}},
			},
		},
		{
			ID:     "ORD-DEMO-2",
			Status: domain.OrderPending,
			Placed: time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC),
			Lines: []domain.CartLine{
				{ID: "demo-l2", ProductID: "mini-crossbody", Name: "Mini Crossbody", UnitPriceCents: 6450, Quantity: 2, Variant: domain.Variant{Color: "Tan", Size: "Small"}},
			},
		},
	}

	for _, s := range seeds {
		if err := insertOrder(ctx, orders, *customer, s); err != nil {
			return fmt.Errorf("insert order %s: %w", s.ID, err)
		}
	}
	return nil
}

func ensureCustomer(ctx context.Context, repo customerrepo.Repository) (*domain.Customer, error) {
	session := customersvc.NewLocal(repo)
	_, err := session.Register(ctx, customersvc.RegisterInput{
		Email:     DemoEmail,
		Password:  DemoPassword,
		FirstName: "Amara",
		LastName:  "Okafor",
		Phone:     "+234 801 234 5678",
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return repo.GetByEmail(ctx, DemoEmail)
	case err != nil:
		return nil, err
	}

	street := domain.Address{Street: "12 Admiralty Way", City: "Lagos", State: "Lagos", Country: "Nigeria", PostalCode: "106104"}
	updated, err := session.UpdateProfile(ctx, customersvc.ProfileInput{Address: &street})
	if err != nil {
		return nil, fmt.Errorf("set address: %w", err)
	}
	if err := session.Logout(ctx); err != nil {
		return nil, fmt.Errorf("sign out: %w", err)
	}
	return updated, nil
}

func insertOrder(ctx context.Context, repo orderrepo.Repository, customer domain.Customer, s orderSeed) error {
	o := domain.SnapshotCart(domain.Cart{Lines: s.Lines})
	o.ID = s.ID
	o.CustomerID = customer.ID
	o.Status = s.Status
	o.PaymentStatus = domain.PaymentPending
	if s.Status == domain.OrderDelivered {
		o.PaymentStatus = domain.PaymentPaid
	}
	o.PaymentMethod = "whatsapp"
	o.Phone = customer.Phone
	if customer.Address != nil {
		o.ShippingAddress = *customer.Address
	} else {
		o.ShippingAddress = domain.Address{Street: "12 Admiralty Way", City: "Lagos"}
	}
	o.CreatedAt = s.Placed

	_, err := repo.Create(ctx, o)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil
	}
	return err
}
