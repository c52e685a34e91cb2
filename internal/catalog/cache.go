package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/skillgap/internal/logging"
)

// DefaultCacheTTL is how long catalog listings stay cached
const DefaultCacheTTL = 6 * time.Hour

// DefaultLoadTimeout bounds a shared load, which outlives any single caller's context
const DefaultLoadTimeout = 2 * time.Minute

const keyPrefix = "skillgap:catalog:"

// Key identifies a cached catalog listing
type Key struct {
	Kind    string
	Year    string
	Term    string
	Subject string
}

// SubjectsKey is the key of a term's subject list
func SubjectsKey(year, semester string) Key {
	return Key{Kind: "subjects", Year: year, Term: semester}
}

// CoursesKey is the key of a subject's course list
func CoursesKey(year, semester, subject string) Key {
	return Key{Kind: "courses", Year: year, Term: semester, Subject: subject}
}

func (k Key) String() string {
	parts := []string{k.Kind, k.Year, k.Term}
	if k.Subject != "" {
		parts = append(parts, k.Subject)
	}
	return strings.Join(parts, ":")
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// Cache is a read-through TTL cache with in-flight request coalescing.
// Entries live in memory; an optional Redis client adds a shared second tier.
type Cache struct {
	ttl         time.Duration
	loadTimeout time.Duration
	now         func() time.Time
	rdb    *redis.Client
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithLoadTimeout bounds each shared load; non-positive values are ignored
func WithLoadTimeout(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

// WithRedis adds a Redis second tier
func WithRedis(rdb *redis.Client) CacheOption {
	return func(c *Cache) { c.rdb = rdb }
}

// WithCacheLogger sets the logger
func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(c *Cache) { c.logger = logging.OrNop(logger) }
}

// NewCache creates a cache. A non-positive ttl uses DefaultCacheTTL.
func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache{
		ttl:         ttl,
		loadTimeout: DefaultLoadTimeout,
		now:         time.Now,
		logger:      zap.NewNop(),
		entries:     make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRedisClient connects to redisURL and pings it
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}
	return rdb, nil
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) store(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate drops a key from both tiers
func (c *Cache) Invalidate(ctx context.Context, key Key) {
	c.mu.Lock()
	delete(c.entries, key.String())
	c.mu.Unlock()
	if c.rdb != nil {
		if err := c.rdb.Del(ctx, keyPrefix+key.String()).Err(); err != nil {
			c.logger.Warn("cache: redis delete failed", zap.String("key", key.String()), zap.Error(err))
		}
	}
}

// Len reports the number of live in-memory entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

// Fetch returns the cached value for key, or calls load once for all concurrent callers
// asking for the same missing key. Failed loads are not cached.
//
// The shared load runs detached from the caller's cancellation and bounded by the
// cache's load timeout, so one caller giving up only ends its own wait.
func Fetch[T any](ctx context.Context, c *Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	var zero T
	k := key.String()
	if v, ok := c.lookup(k); ok {
		return v.(T), nil
	}

	ch := c.group.DoChan(k, func() (any, error) {
		if v, ok := c.lookup(k); ok {
			return v, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		if value, ok := remoteGet[T](loadCtx, c, k); ok {
			c.store(k, value)
			return value, nil
		}

		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.store(k, value)
		remoteSet(loadCtx, c, k, value)
		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func remoteGet[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var value T
	if c.rdb == nil {
		return value, false
	}
	data, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache: redis get failed", zap.String("key", key), zap.Error(err))
		}
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		c.logger.Warn("cache: corrupt redis entry", zap.String("key", key), zap.Error(err))
		return value, false
	}
	return value, true
}

func remoteSet(ctx context.Context, c *Cache, key string, value any) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache: redis set failed", zap.String("key", key), zap.Error(err))
	}
}
