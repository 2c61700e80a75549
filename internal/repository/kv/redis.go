package kv

import (
	"context"
	"errors"

	"aurabags-storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisClient builds a client for the given address.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
		Protocol: 2,
	})
}

// NewRedis stores values as plain redis strings keyed "<namespace>:<key>".
func NewRedis(client *redis.Client, namespace string) Store {
	return &redisStore{client: client, namespace: namespace}
}

func (s *redisStore) key(k string) string {
	return s.namespace + ":" + k
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
