package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/service"
)

const selectionKey = "departments:selection"

// DepartmentCache stores the active-department selection projection in
// Redis. All failures degrade to cache misses; the cache never blocks a
// request.
type DepartmentCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDepartmentCache builds the cache.
func NewDepartmentCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *DepartmentCache {
	return &DepartmentCache{client: client, ttl: ttl, logger: logger}
}

// GetSelection returns the cached projection, if present.
func (c *DepartmentCache) GetSelection(ctx context.Context) ([]service.DepartmentOption, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, selectionKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("selection cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var options []service.DepartmentOption
	if err := json.Unmarshal(raw, &options); err != nil {
		c.logger.Warn("selection cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return options, true
}

// SetSelection caches the projection with the configured TTL.
func (c *DepartmentCache) SetSelection(ctx context.Context, options []service.DepartmentOption) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, selectionKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("selection cache write failed", zap.Error(err))
	}
}

// InvalidateSelection drops the cached projection after a write.
func (c *DepartmentCache) InvalidateSelection(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, selectionKey).Err(); err != nil {
		c.logger.Warn("selection cache invalidation failed", zap.Error(err))
	}
}
