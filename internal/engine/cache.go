package engine

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides 2-tier caching: L1 in-memory + L2 Redis.
// L1 is fast but lost on restart. L2 is optional and expires with the same TTL;
// neither tier is a system of record.
type Cache struct {
	l1              sync.Map      // key → *cacheEntry
	rdb             *redis.Client // nil if Redis unavailable
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewCache sets up the 2-tier cache and starts the L1 cleanup loop.
// redisURL can be empty to disable L2.
func NewCache(redisURL string, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		ttl:             ttl,
		maxEntries:      maxEntries,
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
	}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
				_ = rdb.Close()
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Bool("redis", c.rdb != nil), slog.Int("max_entries", maxEntries))

	go c.cleanupLoop()
	return c
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("gt:%x", hash[:12]) // 24-char hex prefix
}

// Get tries L1, then L2. On L2 hit, populates L1.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		metrics.CacheMisses.Add(1)
		return nil, false
	}

	if val, ok := c.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			slog.Debug("cache: L1 hit", slog.String("key", key))
			metrics.CacheHits.Add(1)
			return entry.data, true
		}
		c.l1.Delete(key) // expired
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			slog.Debug("cache: L2 hit", slog.String("key", key))
			metrics.CacheHits.Add(1)
			c.l1.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})
			return data, true
		}
	}

	metrics.CacheMisses.Add(1)
	return nil, false
}

// Set stores data in both L1 and L2.
func (c *Cache) Set(ctx context.Context, key string, data []byte) {
	if c == nil {
		return
	}

	c.evictIfNeeded()

	c.l1.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// Close stops the cleanup loop and the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	c.stopOnce.Do(func() { close(c.stop) })
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return metrics.CacheHits.Load(), metrics.CacheMisses.Load()
}

// evictIfNeeded removes entries when L1 exceeds maxEntries.
// Removes expired entries first, then oldest entries if still over limit.
func (c *Cache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})

	if count < c.maxEntries {
		return
	}

	// Phase 1: remove expired
	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	if count < c.maxEntries {
		return
	}

	// Phase 2: remove oldest entries until under limit
	var oldest struct {
		key any
		at  time.Time
	}
	for count >= c.maxEntries {
		oldest.key = nil
		oldest.at = time.Now().Add(c.ttl + time.Hour)
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok {
				// Earlier expiry = older entry (since expiry = createdAt + ttl)
				if entry.expiresAt.Before(oldest.at) {
					oldest.key = key
					oldest.at = entry.expiresAt
				}
			}
			return true
		})
		if oldest.key == nil {
			break
		}
		c.l1.Delete(oldest.key)
		count--
	}
}

// cleanupLoop periodically removes expired L1 entries.
func (c *Cache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.l1.Range(func(key, val any) bool {
				if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
					c.l1.Delete(key)
				}
				return true
			})
		}
	}
}
