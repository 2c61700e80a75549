package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"aurabags-storefront/internal/cache"
	"aurabags-storefront/internal/config"
	"aurabags-storefront/internal/handoff"
	"aurabags-storefront/internal/httpserver"
	"aurabags-storefront/internal/remote"
	cartrepo "aurabags-storefront/internal/repository/cart"
	customerrepo "aurabags-storefront/internal/repository/customer"
	"aurabags-storefront/internal/repository/kv"
	orderrepo "aurabags-storefront/internal/repository/order"
	tokenrepo "aurabags-storefront/internal/repository/token"
	"aurabags-storefront/internal/service/anonymous"
	cartsvc "aurabags-storefront/internal/service/cart"
	customersvc "aurabags-storefront/internal/service/customer"
	ordersvc "aurabags-storefront/internal/service/order"
	"aurabags-storefront/internal/storage"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer closeStore()

	shared := kv.NewJSON(store, logger)
	registry := customerrepo.NewRegistry(shared)
	localOrders := ordersvc.NewLocalStore(orderrepo.NewKV(shared))
	sessions := anonymous.New(shared, cfg.SessionTTL)

	linker := handoff.NewLinker(cfg.WhatsAppNumber)
	var notifier handoff.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := handoff.NewKafkaProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Fatalf("connect kafka: %v", err)
		}
		publisher := handoff.NewKafkaPublisher(producer, cfg.KafkaOrderTopic, linker, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Printf("close kafka producer: %v", err)
			}
		}()
		notifier = publisher
	}
	dispatcher := ordersvc.NewDispatcher()

	build := func(ctx context.Context, sessionID string) (httpserver.Scope, error) {
		values := kv.NewJSON(kv.Prefixed(store, anonymous.Namespace(sessionID)), logger)
		local := cartsvc.NewLocal(ctx, cartrepo.NewKV(values), logger)

		var (
			session    customersvc.Session
			remoteCart *cartsvc.Remote
			orderStore ordersvc.Store
		)
		switch cfg.CartBackend {
		case config.BackendRemote:
			client, err := remote.New(cfg.APIBaseURL, cfg.APITimeout, tokenrepo.NewKV(values), logger)
			if err != nil {
				return httpserver.Scope{}, err
			}
			reads := cache.New(cfg.CartCacheTTL)
			session = customersvc.NewRemote(client, reads)
			remoteCart = cartsvc.NewRemote(client, reads)
			orderStore = ordersvc.NewRemoteStore(client, reads)
		default:
			session = customersvc.NewLocal(customerrepo.Scoped(registry, values))
			orderStore = localOrders
		}
		cartService := cartsvc.New(local, remoteCart, session, logger)
		orders := ordersvc.New(orderStore, cartService, session, linker, notifier, logger).UseDispatcher(dispatcher)
		return httpserver.Scope{Cart: cartService, Session: session, Orders: orders}, nil
	}
	scopes := anonymous.NewScopes(build, nil, cfg.SessionIdle)
	if cfg.CartBackend == config.BackendRemote {
		logger.Printf("signed-in carts and orders use %s", cfg.APIBaseURL)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Sessions:      sessions,
		Scopes:        scopes,
		Linker:        linker,
		Store:         store,
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: cfg.SecureCookies,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s (cart backend %s, store %s)", cfg.HTTPAddr, cfg.CartBackend, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
	// Order notifications still in flight must reach the publisher before
	// the deferred Close runs.
	dispatcher.Close()
	scopes.Close()
}
