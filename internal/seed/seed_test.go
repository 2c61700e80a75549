package seed

import (
	"context"
	"testing"

	customerrepo "aurabags-storefront/internal/repository/customer"
	"aurabags-storefront/internal/repository/kv"
	orderrepo "aurabags-storefront/internal/repository/order"
	customersvc "aurabags-storefront/internal/service/customer"
)

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	values := kv.NewJSON(kv.NewMemory(), nil)
	customers := customerrepo.NewKV(values)
	orders := orderrepo.NewKV(values)

	for i := 0; i < 2; i++ {
		if err := Apply(ctx, customers, orders); err != nil {
			t.Fatalf("apply run %d: %v", i+1, err)
		}
	}

	c, err := customers.GetByEmail(ctx, DemoEmail)
	if err != nil {
		t.Fatalf("demo customer missing: %v", err)
	}
	if c.Address == nil || !c.Address.Complete() {
		t.Fatalf("expected demo address, got %+v", c.Address)
	}
	list, err := orders.ListByCustomer(ctx, c.ID)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 demo orders, got %d", len(list))
	}
	if _, ok := customers.CurrentSession(ctx); ok {
		t.Fatalf("seed must not leave a session behind")
	}
}

func TestDemoCredentialsSignIn(t *testing.T) {
	ctx := context.Background()
	values := kv.NewJSON(kv.NewMemory(), nil)
	customers := customerrepo.NewKV(values)
	if err := Apply(ctx, customers, orderrepo.NewKV(values)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	got, err := customersvc.NewLocal(customers).Login(ctx, customersvc.LoginInput{Email: DemoEmail, Password: DemoPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.Phone == "" || got.Address == nil || got.Address.City != "Lagos" {
		t.Fatalf("unexpected demo customer %+v", got)
	}
	if _, err := orderrepo.NewKV(values).GetByID(ctx, "ORD-DEMO-1"); err != nil {
		t.Fatalf("expected demo order: %v", err)
	}
}
