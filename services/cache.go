package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin optional layer over redis. With no address configured,
// or redis down, every call is a no-op and the app serves uncached.
type Cache struct {
	client *redis.Client
	ttl    time.Duration

	warned atomic.Bool
}

// NewCache dials redis and pings it once. A failed ping downgrades to
// bypass mode instead of failing startup.
func NewCache(addr, password string, db int, ttl time.Duration) *Cache {
	if addr == "" {
		return &Cache{ttl: ttl}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, bypassing cache", "addr", addr, "err", err)
		_ = client.Close()
		return &Cache{ttl: ttl}
	}

	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool { return c != nil && c.client != nil }

func (c *Cache) warnOnce(err error) {
	if c.warned.CompareAndSwap(false, true) {
		slog.Warn("redis unavailable, bypassing cache", "err", err)
	}
}

// GetJSON reports whether key was present and decoded into out.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) bool {
	if !c.enabled() {
		return false
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warnOnce(err)
		}
		return false
	}
	return json.Unmarshal(b, out) == nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	if !c.enabled() {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.warnOnce(err)
	}
}

// DeleteByPattern SCANs rather than KEYS so a big keyspace doesn't stall
// redis.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) {
	if !c.enabled() || strings.TrimSpace(pattern) == "" {
		return
	}
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Warn("redis delete failed", "key", iter.Val(), "err", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.warnOnce(err)
	}
}

var _suggestCache *Cache

// InitSuggestionCache wires the shared cache behind the suggestion
// endpoints and their invalidation hooks. Never wiring it is fine; every
// lookup just misses.
func InitSuggestionCache(c *Cache) { _suggestCache = c }

// InvalidateSuggestions drops cached rankings: one user's after a
// profile change, everyone's (userID 0) after the catalog changes.
func InvalidateSuggestions(ctx context.Context, userID uint) {
	if _suggestCache == nil {
		return
	}
	if userID == 0 {
		_suggestCache.DeleteByPattern(ctx, "suggest:*")
		return
	}
	_suggestCache.DeleteByPattern(ctx, fmt.Sprintf("suggest:%d:*", userID))
}
