// Package aclcache caches DescribeACLs results in Redis, keyed by a
// fingerprint of the describe filter. Writes that touch ACLs invalidate
// the affected filters.
package aclcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danishnajam/kafka/internal/observability"
	"github.com/danishnajam/kafka/pkg/acl"
)

type Option func(*redis.Options)

func WithPoolSize(n int) Option {
	return func(o *redis.Options) { o.PoolSize = n }
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.DialTimeout = d }
}

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(ctx context.Context, addr string, ttl time.Duration, opts ...Option) (*Cache, error) {
	if addr == "" {
		return nil, errors.New("aclcache: redis address is required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	ro := &redis.Options{
		Addr:         addr,
		PoolSize:     16,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
	for _, f := range opts {
		f(ro)
	}

	rdb := redis.NewClient(ro)

	start := time.Now()
	err := rdb.Ping(ctx).Err()
	observability.ObserveCacheOp("ping", err, time.Since(start).Seconds())
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("aclcache: redis ping: %w", err)
	}
	return &Cache{rdb: rdb, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Get returns the cached bindings for a filter, reporting whether the
// filter was present. An empty cached result is a valid hit.
func (c *Cache) Get(ctx context.Context, f acl.BindingFilter) ([]acl.Binding, bool, error) {
	start := time.Now()
	raw, err := c.rdb.Get(ctx, Key(f)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCacheOp("get", nil, time.Since(start).Seconds())
		observability.IncCacheMiss()
		return nil, false, nil
	}
	observability.ObserveCacheOp("get", err, time.Since(start).Seconds())
	if err != nil {
		return nil, false, fmt.Errorf("aclcache: GET %s: %w", f, err)
	}

	var bindings []acl.Binding
	if err := json.Unmarshal(raw, &bindings); err != nil {
		// a corrupt entry behaves like a miss; the next Put overwrites it
		observability.IncCacheMiss()
		return nil, false, nil
	}
	observability.IncCacheHit()
	return bindings, true, nil
}

// Put stores the describe result for a filter with the configured TTL.
func (c *Cache) Put(ctx context.Context, f acl.BindingFilter, bindings []acl.Binding) error {
	raw, err := json.Marshal(bindings)
	if err != nil {
		return fmt.Errorf("aclcache: marshal %d bindings: %w", len(bindings), err)
	}

	start := time.Now()
	err = c.rdb.Set(ctx, Key(f), raw, c.ttl).Err()
	observability.ObserveCacheOp("set", err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("aclcache: SET %s: %w", f, err)
	}
	return nil
}

// Reset drops every cached describe result. Mutations call this because
// a created or deleted binding can change the answer of describe filters
// other than the ones the mutation named.
func (c *Cache) Reset(ctx context.Context) error {
	start := time.Now()
	var err error
	iter := c.rdb.Scan(ctx, 0, "acls:describe:*", 256).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err = iter.Err(); err == nil && len(keys) > 0 {
		err = c.rdb.Del(ctx, keys...).Err()
	}
	observability.ObserveCacheOp("reset", err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("aclcache: reset: %w", err)
	}
	return nil
}

// Invalidate drops the cached describe results for the given filters.
func (c *Cache) Invalidate(ctx context.Context, filters ...acl.BindingFilter) error {
	if len(filters) == 0 {
		return nil
	}
	keys := make([]string, 0, len(filters))
	for _, f := range filters {
		keys = append(keys, Key(f))
	}

	start := time.Now()
	err := c.rdb.Del(ctx, keys...).Err()
	observability.ObserveCacheOp("del", err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("aclcache: DEL %d keys: %w", len(keys), err)
	}
	return nil
}
