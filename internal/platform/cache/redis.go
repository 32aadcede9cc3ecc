/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("key not found")

const (
	keyPrefix         = "roastery:"
	idempotencyPrefix = keyPrefix + "idempotency:"

	// IdempotencyTTL is how long a retried sale is recognised as a replay.
	IdempotencyTTL = 24 * time.Hour
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: addr}))
}

func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// GetIdempotency returns the sale id recorded under an idempotency key hash.
func (r *RedisStore) GetIdempotency(ctx context.Context, hash string) (string, error) {
	return r.get(ctx, idempotencyPrefix+hash)
}

func (r *RedisStore) SetIdempotency(ctx context.Context, hash string, recordID string) error {
	return r.client.Set(ctx, idempotencyPrefix+hash, recordID, IdempotencyTTL).Err()
}

// Get retrieves a value by key. Returns ErrCacheMiss if not found.
func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	return r.get(ctx, keyPrefix+key)
}

func (r *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}

func (r *RedisStore) get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}
