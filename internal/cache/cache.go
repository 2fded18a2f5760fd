package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry is one resolved value and when it was resolved.
type entry struct {
	value      any
	resolvedAt time.Time
}

// Cache is safe for concurrent use. The zero value is not usable; call New.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	gens    map[string]uint64
	group   singleflight.Group
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "request_cache")
	return c
}

// Get returns the cached value for key if it is younger than ttl. Otherwise
// it joins an in-flight query for key or starts one. A successful result is
// stored with a fresh timestamp unless the key was invalidated while the
// query ran; an error is returned to every waiting caller and not stored.
//
// The shared query keeps the starting caller's context values but not its
// cancellation. Each caller stops waiting when its own ctx is done, and the
// query runs to completion for whoever is still waiting.
func Get[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, query func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.lookup(key, ttl); ok {
		return cast[T](key, v)
	}

	queryCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		gen := c.generation(key)
		result, err := query(queryCtx)
		if err != nil {
			c.logger.Debug("query failed, not cached", "key", key, "error", err)
			return nil, err
		}
		c.store(key, gen, result)
		return result, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			c.logger.Debug("coalesced with in-flight query", "key", key)
		}
		return cast[T](key, res.Val)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func cast[T any](key string, v any) (T, error) {
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache key %q holds %T", key, v)
	}
	return typed, nil
}

func (c *Cache) lookup(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.resolvedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

// generation also registers key so that a prefix invalidation can fence a
// query that has not stored anything yet.
func (c *Cache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.gens[key]
	c.gens[key] = g
	return g
}

func (c *Cache) store(key string, gen uint64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[key] != gen {
		c.logger.Debug("discarding result invalidated in flight", "key", key)
		return
	}
	c.entries[key] = entry{value: value, resolvedAt: c.now()}
}

// Invalidate removes the given keys. A query for one of them that is still
// in flight keeps serving its current waiters but will not be stored, and
// the next Get starts a fresh query.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		c.dropLocked(key)
	}
}

// InvalidatePrefix removes every stored key starting with prefix, and fences
// in-flight queries for keys with that prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.dropLocked(key)
		}
	}
	for key := range c.gens {
		if strings.HasPrefix(key, prefix) {
			c.dropLocked(key)
		}
	}
}

// InvalidateAll clears the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		c.dropLocked(key)
	}
	for key := range c.gens {
		c.dropLocked(key)
	}
}

// dropLocked must be called with c.mu held.
func (c *Cache) dropLocked(key string) {
	delete(c.entries, key)
	c.gens[key]++
	c.group.Forget(key)
}

// Len returns the number of stored entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
