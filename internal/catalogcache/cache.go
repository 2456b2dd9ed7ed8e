// Package catalogcache keeps the active status catalog in Redis.
package catalogcache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"roomstatus/internal/tracking"
)

const Key = "roomstatus:catalog:active"

// Client is the part of redis.Cmdable the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Cache struct {
	client Client
	ttl    time.Duration
	log    *slog.Logger
}

var _ tracking.CatalogCache = (*Cache)(nil)

func New(client Client, ttl time.Duration, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, log: log}
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (c *Cache) Get(ctx context.Context) ([]tracking.Status, bool) {
	raw, err := c.client.Get(ctx, Key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "catalog cache read failed", "err", err)
		}
		return nil, false
	}
	var out []tracking.Status
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.WarnContext(ctx, "catalog cache entry corrupt", "err", err)
		return nil, false
	}
	return out, true
}

func (c *Cache) Set(ctx context.Context, statuses []tracking.Status) {
	raw, err := json.Marshal(statuses)
	if err != nil {
		c.log.WarnContext(ctx, "catalog cache encode failed", "err", err)
		return
	}
	if err := c.client.Set(ctx, Key, raw, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "catalog cache write failed", "err", err)
	}
}

func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, Key).Err(); err != nil {
		c.log.WarnContext(ctx, "catalog cache invalidate failed", "err", err)
	}
}
