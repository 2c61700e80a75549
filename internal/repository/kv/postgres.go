package kv

import (
	"context"
	"errors"

	"aurabags-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresStore struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPostgres stores values in the kv_entries table under namespace.
func NewPostgres(pool *pgxpool.Pool, namespace string) Store {
	return &postgresStore{pool: pool, namespace: namespace}
}

func (s *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
SELECT value
FROM kv_entries
WHERE namespace = $1 AND key = $2
`
	var value []byte
	if err := s.pool.QueryRow(ctx, q, s.namespace, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *postgresStore) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO kv_entries (namespace, key, value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (namespace, key) DO UPDATE
SET value = EXCLUDED.value, updated_at = NOW()
`
	_, err := s.pool.Exec(ctx, q, s.namespace, key, value)
	return err
}

func (s *postgresStore) Delete(ctx context.Context, key string) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`, s.namespace, key)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
