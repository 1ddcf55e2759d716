// Package cache holds rendered dashboard views keyed by route path.
//
// Invalidation is path-wide: each path carries a generation number that is
// part of every entry key, and Invalidate bumps it. Entries written under an
// older generation are never read again and expire on their own TTL.
//
// Get reports the generation it read and Set writes under that generation,
// so a view rendered before an invalidation lands in a dead generation.
package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisViewCache stores views in Redis so every server process sees the same
// invalidations.
type RedisViewCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisViewCache(client *redis.Client, ttl time.Duration) *RedisViewCache {
	return &RedisViewCache{redis: client, ttl: ttl}
}

func generationKey(path string) string {
	return fmt.Sprintf("view:gen:%s", path)
}

func entryKey(path string, gen int64, variant string) string {
	return fmt.Sprintf("view:%s:%d:%s", path, gen, variant)
}

func (c *RedisViewCache) generation(ctx context.Context, path string) (int64, error) {
	gen, err := c.redis.Get(ctx, generationKey(path)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// Get returns the cached body for path and variant (usually the raw query)
// together with the generation of path it was looked up under.
func (c *RedisViewCache) Get(ctx context.Context, path, variant string) ([]byte, int64, bool, error) {
	gen, err := c.generation(ctx, path)
	if err != nil {
		return nil, 0, false, err
	}

	body, err := c.redis.Get(ctx, entryKey(path, gen, variant)).Bytes()
	if err == redis.Nil {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, err
	}
	return body, gen, true, nil
}

// Set stores body under gen, the generation returned by the Get that missed.
func (c *RedisViewCache) Set(ctx context.Context, path string, gen int64, variant string, body []byte) error {
	return c.redis.Set(ctx, entryKey(path, gen, variant), string(body), c.ttl).Err()
}

// Invalidate marks every cached view of path stale.
func (c *RedisViewCache) Invalidate(ctx context.Context, path string) error {
	gen, err := c.redis.Incr(ctx, generationKey(path)).Result()
	if err != nil {
		return fmt.Errorf("invalidate %s: %w", path, err)
	}
	log.Printf("[CACHE] Invalidated %s (generation %d)", path, gen)
	return nil
}

type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

// MemoryViewCache is the single-process fallback used when Redis is down.
type MemoryViewCache struct {
	mu          sync.Mutex
	ttl         time.Duration
	generations map[string]int64
	entries     map[string]memoryEntry
	now         func() time.Time
}

func NewMemoryViewCache(ttl time.Duration) *MemoryViewCache {
	return &MemoryViewCache{
		ttl:         ttl,
		generations: make(map[string]int64),
		entries:     make(map[string]memoryEntry),
		now:         time.Now,
	}
}

func (c *MemoryViewCache) Get(_ context.Context, path, variant string) ([]byte, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.generations[path]
	key := entryKey(path, gen, variant)
	entry, ok := c.entries[key]
	if !ok {
		return nil, gen, false, nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, gen, false, nil
	}
	return entry.body, gen, true, nil
}

// Set stores body under gen. A gen older than the current generation means
// path was invalidated after the read; the body is dropped.
func (c *MemoryViewCache) Set(_ context.Context, path string, gen int64, variant string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generations[path] {
		return nil
	}
	c.entries[entryKey(path, gen, variant)] = memoryEntry{
		body:      append([]byte(nil), body...),
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// Invalidate bumps the generation of path and drops its stale entries.
func (c *MemoryViewCache) Invalidate(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.generations[path]
	c.generations[path] = old + 1

	prefix := fmt.Sprintf("view:%s:%d:", path, old)
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
	return nil
}
