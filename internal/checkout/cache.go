package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alharthy/oudshop-backend/internal/orders"
	"github.com/alharthy/oudshop-backend/internal/redisx"
)

// PendingStore holds the checkout snapshot between session creation
// and confirmation. Not authoritative: the gateway metadata is the
// durable fallback when an entry is gone.
type PendingStore interface {
	Set(ctx context.Context, p *orders.PendingOrder) error
	// Get returns (nil, nil) when no entry exists.
	Get(ctx context.Context, orderRef string) (*orders.PendingOrder, error)
	Delete(ctx context.Context, orderRef string) error
}

// RedisPending keeps pending orders in Redis with a TTL, so entries
// are bounded and survive an api-process restart.
type RedisPending struct{ RDB *redis.Client }

func (c *RedisPending) Set(ctx context.Context, p *orders.PendingOrder) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending order: %w", err)
	}
	key := fmt.Sprintf(redisx.KeyPendingOrder, p.OrderRef)
	return c.RDB.Set(ctx, key, b, redisx.TTLPendingOrder).Err()
}

func (c *RedisPending) Get(ctx context.Context, orderRef string) (*orders.PendingOrder, error) {
	key := fmt.Sprintf(redisx.KeyPendingOrder, orderRef)
	s, err := c.RDB.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p orders.PendingOrder
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("unmarshal pending order: %w", err)
	}
	return &p, nil
}

func (c *RedisPending) Delete(ctx context.Context, orderRef string) error {
	return c.RDB.Del(ctx, fmt.Sprintf(redisx.KeyPendingOrder, orderRef)).Err()
}
