package main

import (
	"context"
	"log"
	"os"

	"aurabags-storefront/internal/config"
	customerrepo "aurabags-storefront/internal/repository/customer"
	"aurabags-storefront/internal/repository/kv"
	orderrepo "aurabags-storefront/internal/repository/order"
	"aurabags-storefront/internal/seed"
	"aurabags-storefront/internal/storage"
)

func main() {
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver == config.DriverMemory {
		logger.Fatalf("seeding the in-memory store has no effect; set STORE_DRIVER")
	}

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer closeStore()

	values := kv.NewJSON(store, logger)
	if err := seed.Apply(ctx, customerrepo.NewKV(values), orderrepo.NewKV(values)); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied; sign in as %s", seed.DemoEmail)
}
