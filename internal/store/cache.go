// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"kundali-workers/internal/common/logger"
	"kundali-workers/internal/models"
)

const vectorKeyPrefix = "kundali:vectors:"

// VectorCache is a read-through Redis cache for per-user vector sets. A nil
// *VectorCache is a valid no-op cache, so callers never branch on whether
// Redis is configured. Cache failures degrade to a database read and are
// logged, never returned.
type VectorCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewVectorCache wraps a Redis client. Returns nil when client is nil so the
// no-op path kicks in naturally.
func NewVectorCache(client *redis.Client, ttl time.Duration, log logger.Logger) *VectorCache {
	if client == nil {
		return nil
	}
	return &VectorCache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "vector-cache"}),
	}
}

// Get returns the cached vector set for a user, or ok=false on a miss,
// decode failure or disabled cache.
func (c *VectorCache) Get(ctx context.Context, userID string) ([]models.PersonVector, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, vectorKeyPrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).Warn("vector cache read failed, falling back to database", nil)
		return nil, false
	}

	var vectors []models.PersonVector
	if err := json.Unmarshal(raw, &vectors); err != nil {
		c.logger.WithError(err).Warn("vector cache entry corrupt, falling back to database", nil)
		return nil, false
	}
	return vectors, true
}

// Set stores a vector set with the configured TTL. Best effort.
func (c *VectorCache) Set(ctx context.Context, userID string, vectors []models.PersonVector) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(vectors)
	if err != nil {
		c.logger.WithError(err).Warn("vector cache encode failed", nil)
		return
	}
	if err := c.client.Set(ctx, vectorKeyPrefix+userID, raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("vector cache write failed", nil)
	}
}

// Invalidate drops a user's cached vectors, for use when vectors change.
func (c *VectorCache) Invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, vectorKeyPrefix+userID).Err(); err != nil {
		c.logger.WithError(err).Warn("vector cache invalidation failed", nil)
	}
}
