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

	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

// API key hashes map to the viewer they were issued to. Raw keys are never
// stored.
const apiKeyPrefix = keyPrefix + "auth:apikey:"

var _ ports.AuthRepository = (*RedisStore)(nil)

func (r *RedisStore) ValidateKey(ctx context.Context, apiKeyHash string) (string, bool, error) {
	viewerID, err := r.client.Get(ctx, apiKeyPrefix+apiKeyHash).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	case viewerID == "":
		return "", false, nil
	}
	return viewerID, true, nil
}

// RegisterKey stores a key hash for viewerID. Keys stay valid until revoked.
func (r *RedisStore) RegisterKey(ctx context.Context, apiKeyHash, viewerID string) error {
	if viewerID == "" {
		return errors.New("viewer id is required")
	}
	return r.client.Set(ctx, apiKeyPrefix+apiKeyHash, viewerID, 0).Err()
}

// RevokeKey removes a key hash and reports whether it was registered.
func (r *RedisStore) RevokeKey(ctx context.Context, apiKeyHash string) (bool, error) {
	n, err := r.client.Del(ctx, apiKeyPrefix+apiKeyHash).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
