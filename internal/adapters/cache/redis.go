// Package cache holds Redis-backed adapters.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Defaults for the Redis deduper.
const (
	DefaultKeyPrefix = "ratecard:tx:"
	DefaultTTL       = 7 * 24 * time.Hour
)

// Connect initializes a Redis client from URL or host:port input.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// Option configures a RedisDeduper.
type Option func(*RedisDeduper)

// WithKeyPrefix namespaces the dedupe keys.
func WithKeyPrefix(prefix string) Option {
	return func(d *RedisDeduper) {
		if prefix != "" {
			d.prefix = prefix
		}
	}
}

// WithTTL sets how long a transaction id is remembered.
func WithTTL(ttl time.Duration) Option {
	return func(d *RedisDeduper) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

// RedisDeduper tracks transaction ids with SET NX so several API replicas
// share one idempotency window.
type RedisDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper on client.
func NewRedisDeduper(client *redis.Client, opts ...Option) *RedisDeduper {
	d := &RedisDeduper{client: client, prefix: DefaultKeyPrefix, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Key returns the Redis key used for id.
func (d *RedisDeduper) Key(id string) string {
	return d.prefix + id
}

// SeenAndRecord reports whether id was already recorded and records it
// otherwise.
func (d *RedisDeduper) SeenAndRecord(ctx context.Context, id string) (bool, error) {
	created, err := d.client.SetNX(ctx, d.Key(id), time.Now().UTC().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return !created, nil
}

// Unrecord forgets id.
func (d *RedisDeduper) Unrecord(ctx context.Context, id string) error {
	if err := d.client.Del(ctx, d.Key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (d *RedisDeduper) Close() error {
	return d.client.Close()
}
