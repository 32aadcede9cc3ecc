/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus fans committed stock movements out over Redis pub/sub. Every
// movement goes to domain.StockMovementsChannel and to a per stage channel
// (StageChannel) so consumers can follow a single stage.
type RedisEventBus struct {
	client *redis.Client
}

var _ ports.EventBus = (*RedisEventBus)(nil)

func NewRedisEventBus(addr string) *RedisEventBus {
	return NewRedisEventBusFromClient(redis.NewClient(&redis.Options{Addr: addr}))
}

func NewRedisEventBusFromClient(client *redis.Client) *RedisEventBus {
	return &RedisEventBus{client: client}
}

// StageChannel is the channel carrying only the movements of stage.
func StageChannel(stage domain.Stage) string {
	return domain.StockMovementsChannel + "." + string(stage)
}

// PublishMovements sends the movements of one unit of work in a single
// pipeline round trip, in order.
func (b *RedisEventBus) PublishMovements(ctx context.Context, moves []domain.StockMovement) error {
	if len(moves) == 0 {
		return nil
	}
	pipe := b.client.Pipeline()
	for _, m := range moves {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode %s movement of %s: %w", m.Stage, m.BatchID, err)
		}
		pipe.Publish(ctx, domain.StockMovementsChannel, payload)
		pipe.Publish(ctx, StageChannel(m.Stage), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %d stock movements: %w", len(moves), err)
	}
	return nil
}

func (b *RedisEventBus) Close() error {
	return b.client.Close()
}
