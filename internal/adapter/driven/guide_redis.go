package driven

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	port "github.com/alorle/m3u8-editor/internal/port/driven"
	"github.com/alorle/m3u8-editor/internal/schedule"
)

const guideRedisKey = "m3u8-editor:guide"

// GuideRedisCache implements the GuideCache port on Redis, so several editor
// instances can share one downloaded guide.
type GuideRedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuideRedisCache parses a Redis URL (e.g. "redis://host:6379/0").
// Entries expire after ttl; zero keeps them until deleted.
// Call Ping to verify the connection.
func NewGuideRedisCache(rawURL string, ttl time.Duration) (*GuideRedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &GuideRedisCache{client: redis.NewClient(opts), ttl: ttl}, nil
}

// Get returns the cached snapshot.
func (c *GuideRedisCache) Get(ctx context.Context) (schedule.Snapshot, error) {
	raw, err := c.client.Get(ctx, guideRedisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return schedule.Snapshot{}, port.ErrCacheMiss
	}
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("cache get %s: %w", guideRedisKey, err)
	}

	s, err := decodeSnapshot(raw)
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("cache unmarshal %s: %w", guideRedisKey, err)
	}
	return s, nil
}

// Set stores s under the guide key.
func (c *GuideRedisCache) Set(ctx context.Context, s schedule.Snapshot) error {
	data, err := encodeSnapshot(s)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", guideRedisKey, err)
	}
	return c.client.Set(ctx, guideRedisKey, data, c.ttl).Err()
}

// Delete removes the guide key.
func (c *GuideRedisCache) Delete(ctx context.Context) error {
	return c.client.Del(ctx, guideRedisKey).Err()
}

// Ping checks the connection to Redis.
func (c *GuideRedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close shuts down the Redis client.
func (c *GuideRedisCache) Close() error {
	return c.client.Close()
}
