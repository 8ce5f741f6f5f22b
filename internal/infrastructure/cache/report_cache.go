package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appmrp "github.com/emstack/backend/internal/application/mrp"
	"github.com/emstack/backend/internal/domain/mrp"
	"github.com/emstack/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultReportKey = "shortage:report"

// RedisReportCache stores the shortage report as a JSON blob in Redis so that
// multiple instances share one cached snapshot
type RedisReportCache struct {
	client *redis.Client
	key    string
}

// NewRedisReportCache connects to Redis and returns a report cache
func NewRedisReportCache(cfg *config.RedisConfig) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisReportCache{client: client, key: defaultReportKey}, nil
}

// NewRedisReportCacheWithClient creates a report cache with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisReportCacheWithClient(client *redis.Client, key string) *RedisReportCache {
	if key == "" {
		key = defaultReportKey
	}
	return &RedisReportCache{client: client, key: key}
}

// Get returns the cached report, or nil when absent or expired
func (c *RedisReportCache) Get(ctx context.Context) (*mrp.Report, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var report mrp.Report
	if err := json.Unmarshal(data, &report); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		return nil, nil
	}
	return &report, nil
}

// Set stores a report for the given duration
func (c *RedisReportCache) Set(ctx context.Context, report *mrp.Report, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// Invalidate drops the cached report
func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached report: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

var _ appmrp.ReportCache = (*RedisReportCache)(nil)
