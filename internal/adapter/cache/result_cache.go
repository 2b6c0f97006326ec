package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ressKim-io/prompt-guard/internal/domain/entity"
)

// KeyPrefix namespaces every key written by the result cache
const KeyPrefix = "prompt-guard:"

// RedisResultCache stores classification results in redis. Backend failures
// are logged and reported as misses.
type RedisResultCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisResultCache creates a result cache. A zero ttl keeps entries forever.
func NewRedisResultCache(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *RedisResultCache {
	return &RedisResultCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get looks up a cached result
func (c *RedisResultCache) Get(ctx context.Context, key string) (*entity.ClassificationResult, bool) {
	data, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Result cache lookup failed", zap.Error(err))
		}
		return nil, false
	}

	var result entity.ClassificationResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("Discarding malformed cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &result, true
}

// Set stores a result
func (c *RedisResultCache) Set(ctx context.Context, key string, result *entity.ClassificationResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, KeyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Result cache store failed", zap.Error(err))
	}
}
