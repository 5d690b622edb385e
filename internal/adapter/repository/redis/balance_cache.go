package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BalanceCache implements usecase.BalanceCache using Redis. Entries carry a
// TTL to bound staleness after out-of-band database edits; bounded memory
// is delegated to Redis eviction. The cache is write-through only: a miss
// is never an error and a cache failure never fails the mutation that
// produced the value.
type BalanceCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewBalanceCache creates a new BalanceCache.
func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &BalanceCache{
		client: client,
		prefix: "balance:",
		ttl:    ttl,
	}
}

// Get retrieves a cached balance. The second return reports a hit.
func (c *BalanceCache) Get(ctx context.Context, playerID uuid.UUID) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+playerID.String()).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.client.Del(ctx, c.prefix+playerID.String()).Err()
		return 0, false, nil
	}

	return balance, true, nil
}

// Set stores a balance with the configured TTL.
func (c *BalanceCache) Set(ctx context.Context, playerID uuid.UUID, balance int64) error {
	return c.client.Set(ctx, c.prefix+playerID.String(), strconv.FormatInt(balance, 10), c.ttl).Err()
}

// SetIfAbsent stores a balance only when no entry exists. Read-repair uses
// it so a snapshot loaded before a concurrent mutation cannot overwrite
// that mutation's write-through.
func (c *BalanceCache) SetIfAbsent(ctx context.Context, playerID uuid.UUID, balance int64) error {
	return c.client.SetNX(ctx, c.prefix+playerID.String(), strconv.FormatInt(balance, 10), c.ttl).Err()
}

// Invalidate removes a cached balance.
func (c *BalanceCache) Invalidate(ctx context.Context, playerID uuid.UUID) error {
	return c.client.Del(ctx, c.prefix+playerID.String()).Err()
}
