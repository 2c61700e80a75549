// Package storage opens the key-value Store selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"aurabags-storefront/internal/config"
	"aurabags-storefront/internal/db"
	"aurabags-storefront/internal/migrate"
	"aurabags-storefront/internal/repository/kv"
)

// Open connects the configured driver. The returned close func releases the
// underlying client and is safe to call once.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (kv.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory, "":
		logger.Printf("storage: using in-memory store; state is lost on exit")
		return kv.NewMemory(), func() {}, nil

	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		version, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("read schema version: %w", err)
		}
		if version == 0 || dirty {
			logger.Printf("storage: schema version %d (dirty=%t); run cmd/migrate", version, dirty)
		}
		return kv.NewPostgres(pool, cfg.StoreNamespace), pool.Close, nil

	case config.DriverRedis:
		client := kv.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return kv.NewRedis(client, cfg.StoreNamespace), func() {
			if err := client.Close(); err != nil {
				logger.Printf("storage: close redis: %v", err)
			}
		}, nil

	case config.DriverMongo:
		client, err := kv.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		return kv.NewMongo(client.Database(cfg.MongoDatabase), cfg.StoreNamespace), func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				logger.Printf("storage: disconnect mongo: %v", err)
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
