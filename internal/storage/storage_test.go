package storage

import (
	"context"
	"io"
	"log"
	"testing"

	"aurabags-storefront/internal/config"
)

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()
	store, closeFn, err := Open(ctx, config.Config{StoreDriver: config.DriverMemory}, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()
	if err := store.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("get = %q, %v", got, err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), config.Config{StoreDriver: "sqlite"}, log.New(io.Discard, "", 0))
	if err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
