package customer

import (
	"context"
	"errors"
	"testing"

	"aurabags-storefront/internal/domain"
	"aurabags-storefront/internal/repository/kv"
)

func TestKV_CreateIsCaseInsensitiveUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewKV(kv.NewJSON(kv.NewMemory(), nil))

	if _, err := repo.Create(ctx, domain.Customer{ID: "c1", Email: "user@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Customer{ID: "c2", Email: "USER@example.com"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	got, err := repo.GetByEmail(ctx, "User@Example.com")
	if err != nil || got.ID != "c1" {
		t.Fatalf("unexpected lookup %+v %v", got, err)
	}
}

func TestKV_UpdateAndGetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewKV(kv.NewJSON(kv.NewMemory(), nil))
	_, _ = repo.Create(ctx, domain.Customer{ID: "c1", Email: "a@example.com"})

	if _, err := repo.Update(ctx, domain.Customer{ID: "c1", Email: "a@example.com", Phone: "555"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetByID(ctx, "c1")
	if err != nil || got.Phone != "555" {
		t.Fatalf("unexpected customer %+v %v", got, err)
	}
	if _, err := repo.Update(ctx, domain.Customer{ID: "nope"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKV_CurrentSessionOmitsPasswordHash(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	repo := NewKV(kv.NewJSON(store, nil))

	if _, ok := repo.CurrentSession(ctx); ok {
		t.Fatalf("expected no session")
	}
	if err := repo.SetCurrentSession(ctx, domain.Customer{ID: "c1", Email: "a@example.com", PasswordHash: "secret"}); err != nil {
		t.Fatalf("set session: %v", err)
	}
	got, ok := repo.CurrentSession(ctx)
	if !ok || got.ID != "c1" || got.PasswordHash != "" {
		t.Fatalf("unexpected session %+v %v", got, ok)
	}
	if err := repo.ClearCurrentSession(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := repo.CurrentSession(ctx); ok {
		t.Fatalf("expected no session after clear")
	}
}

type flakyStore struct {
	kv.Store
	failReads bool
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failReads {
		return nil, errors.New("connection reset")
	}
	return s.Store.Get(ctx, key)
}

func TestKV_ReadFailureKeepsRegistry(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: kv.NewMemory()}
	repo := NewKV(kv.NewJSON(store, nil))
	if _, err := repo.Create(ctx, domain.Customer{ID: "c1", Email: "a@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	store.failReads = true
	if _, err := repo.Create(ctx, domain.Customer{ID: "c2", Email: "b@example.com"}); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on create, got %v", err)
	}
	if _, err := repo.Update(ctx, domain.Customer{ID: "c1", Email: "a@example.com"}); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on update, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "a@example.com"); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on lookup, got %v", err)
	}

	store.failReads = false
	if got, err := repo.GetByEmail(ctx, "a@example.com"); err != nil || got.ID != "c1" {
		t.Fatalf("expected registered customer to survive, got %+v %v", got, err)
	}
}

func TestScopedSessionsShareRegistry(t *testing.T) {
	ctx := context.Background()
	base := kv.NewMemory()
	registry := NewRegistry(kv.NewJSON(base, nil))
	a := Scoped(registry, kv.NewJSON(kv.Prefixed(base, "session/a/"), nil))
	b := Scoped(registry, kv.NewJSON(kv.Prefixed(base, "session/b/"), nil))

	created, err := a.Create(ctx, domain.Customer{ID: "c1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := a.SetCurrentSession(ctx, *created); err != nil {
		t.Fatalf("set session: %v", err)
	}
	if _, err := b.GetByEmail(ctx, "a@example.com"); err != nil {
		t.Fatalf("expected registry shared across sessions: %v", err)
	}
	if _, ok := b.CurrentSession(ctx); ok {
		t.Fatalf("sign-in must not leak into another session")
	}
}
