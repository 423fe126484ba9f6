package orders

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/carebridge-health/dme-orders/pkg/common/logger"
	"github.com/carebridge-health/dme-orders/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

// Cache keeps recently extracted orders keyed by a digest of the raw
// note text. The rule-based path is deterministic, so a hit can be
// served without re-extraction. Cache failures are logged and ignored.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, rawText string) (*models.DeviceOrder, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, cacheKey(rawText)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).Warn("order cache read failed")
		}
		return nil, false
	}

	var order models.DeviceOrder
	if err := json.Unmarshal(data, &order); err != nil {
		logger.Log.WithError(err).Warn("order cache entry corrupt")
		return nil, false
	}
	return &order, true
}

func (c *Cache) Put(ctx context.Context, rawText string, order *models.DeviceOrder) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(order)
	if err != nil {
		logger.Log.WithError(err).Warn("order cache marshal failed")
		return
	}

	if err := c.client.Set(ctx, cacheKey(rawText), data, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).Warn("order cache write failed")
	}
}

func cacheKey(rawText string) string {
	sum := sha256.Sum256([]byte(rawText))
	return "orders:note:" + hex.EncodeToString(sum[:])
}
