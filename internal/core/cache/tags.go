// Package cache keeps the tag frequency result in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seckatie/clipd/internal/config"
	"github.com/seckatie/clipd/internal/core"
	"github.com/seckatie/clipd/internal/core/db"
	"github.com/seckatie/clipd/internal/logger"
)

// TagsKey is the Redis key holding the cached tag counts.
const TagsKey = "clipd:tags"

const defaultTTL = 5 * time.Minute

// TagSource computes tag counts from the store.
type TagSource interface {
	TagCounts(ctx context.Context) ([]core.TagCount, error)
}

// TagCache serves tag counts from Redis, falling back to the source on a
// miss. Redis failures are logged and never fail a request.
type TagCache struct {
	client *redis.Client
	source TagSource
	ttl    time.Duration
	log    logger.Logger
}

// New connects to Redis and returns a cache in front of source.
func New(ctx context.Context, cfg config.RedisConfig, source TagSource, log logger.Logger) (*TagCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, source, cfg.TagsTTL, log), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, source TagSource, ttl time.Duration, log logger.Logger) *TagCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TagCache{
		client: client,
		source: source,
		ttl:    ttl,
		log:    log.With(logger.String("component", "tag_cache")),
	}
}

// TagCounts returns the cached counts, loading and storing them on a miss.
func (c *TagCache) TagCounts(ctx context.Context) ([]core.TagCount, error) {
	if counts, ok := c.get(ctx); ok {
		return counts, nil
	}

	counts, err := c.source.TagCounts(ctx)
	if err != nil {
		return nil, err
	}

	c.set(ctx, counts)
	return counts, nil
}

func (c *TagCache) get(ctx context.Context) ([]core.TagCount, bool) {
	raw, err := c.client.Get(ctx, TagsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("failed to read tag cache", logger.Error(err))
		}
		return nil, false
	}

	var counts []core.TagCount
	if err := json.Unmarshal(raw, &counts); err != nil {
		c.log.Warn("discarding corrupt tag cache entry", logger.Error(err))
		return nil, false
	}
	if counts == nil {
		counts = []core.TagCount{}
	}
	return counts, true
}

func (c *TagCache) set(ctx context.Context, counts []core.TagCount) {
	raw, err := json.Marshal(counts)
	if err != nil {
		c.log.Warn("failed to encode tag counts", logger.Error(err))
		return
	}
	if err := c.client.Set(ctx, TagsKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn("failed to write tag cache", logger.Error(err))
	}
}

// Invalidate drops the cached counts.
func (c *TagCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, TagsKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate tag cache: %w", err)
	}
	return nil
}

// Attach invalidates the cache whenever a clip changes in d.
func (c *TagCache) Attach(d *db.DB) {
	for _, kind := range db.AllEventKinds {
		d.RegisterEventListener(kind, func(db.Event) error {
			return c.Invalidate(context.Background())
		})
	}
}

// Ping checks the Redis connection.
func (c *TagCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *TagCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}
	return nil
}
