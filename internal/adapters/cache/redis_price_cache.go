package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hawltrack/zakat_engine_app/internal/apperrors"
	"github.com/hawltrack/zakat_engine_app/internal/core/domain"
	"github.com/hawltrack/zakat_engine_app/internal/core/ports/providers"
	"github.com/redis/go-redis/v9"
)

const latestPricesKey = "zakat:prices:latest"

// RedisPriceCache stores the latest manually supplied metal prices in Redis.
// Prices are kept without a TTL; staleness is visible through CapturedAt.
type RedisPriceCache struct {
	client *redis.Client
}

// NewRedisPriceCache creates the metal price cache adapter.
func NewRedisPriceCache(client *redis.Client) *RedisPriceCache {
	return &RedisPriceCache{client: client}
}

// Ensure RedisPriceCache implements providers.PriceCache
var _ providers.PriceCache = (*RedisPriceCache)(nil)

func (c *RedisPriceCache) StorePrices(ctx context.Context, snapshot domain.PriceSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal price snapshot: %w", err)
	}
	if err := c.client.Set(ctx, latestPricesKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("store price snapshot: %w", err)
	}
	return nil
}

func (c *RedisPriceCache) LatestPrices(ctx context.Context) (*domain.PriceSnapshot, error) {
	raw, err := c.client.Get(ctx, latestPricesKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: no metal prices cached", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch price snapshot: %w", err)
	}
	var snapshot domain.PriceSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal price snapshot: %w", err)
	}
	return &snapshot, nil
}
