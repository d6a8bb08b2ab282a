// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

// Compile-time interface check.
var _ Backend = (*RedisBackend)(nil)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisBackend stores entries in Redis. Expiry is enforced by Redis itself
// through SET ... EX.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to Redis and verifies the connection with PING.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	r := OpenRedisBackend(opts)
	if err := r.Ping(ctx); err != nil {
		_ = r.Close()
		return nil, kerr.With(err, kerr.Field("addr", opts.Addr))
	}
	return r, nil
}

// OpenRedisBackend returns a backend without contacting Redis. The client
// connects lazily and reconnects on its own.
func OpenRedisBackend(opts RedisOptions) *RedisBackend {
	return &RedisBackend{client: redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

// Ping checks that Redis is reachable.
func (r *RedisBackend) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return kerr.Wrap(err, kerr.CodeCacheBackendUnavailable, "pinging redis", kerr.FieldBackend("redis"))
	}
	return nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, unavailable(err, "redis get")
	}
	return val, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return unavailable(err, "redis set")
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return unavailable(err, "redis del")
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func unavailable(err error, msg string) error {
	return kerr.Wrap(err, kerr.CodeCacheBackendUnavailable, msg, kerr.FieldBackend("redis"))
}
