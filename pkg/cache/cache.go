package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheService wraps redis for read-side caching of campaign analytics,
// featured listings, and organization lookups.
type CacheService struct {
	client *redis.Client
	logger *zap.Logger

	// read from handler goroutines concurrently with /metrics scrapes
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCacheService(addr, password string, db int, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     50,
		MinIdleConns: 5,
		PoolTimeout:  4 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", addr))

	return &CacheService{
		client: client,
		logger: logger,
	}, nil
}

// NewCacheServiceFromClient wraps an existing client (used in tests and
// when the server owns the connection).
func NewCacheServiceFromClient(client *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{client: client, logger: logger}
}

func (c *CacheService) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ===============================
// Key builders
// ===============================

func AnalyticsKey(campaignID string) string {
	return fmt.Sprintf("campaign:analytics:v1:%s", campaignID)
}

func FeaturedKey() string {
	return "campaigns:featured:v1"
}

func OrgSearchKey(query string) string {
	return fmt.Sprintf("org:search:v1:%s", query)
}

// ===============================
// JSON get/set
// ===============================

// GetJSON unmarshals a cached value into dest. A miss returns (false, nil).
func (c *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			c.misses.Add(1)
			return false, nil
		}
		return false, fmt.Errorf("cache get: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode: %w", err)
	}
	c.hits.Add(1)
	return true, nil
}

func (c *CacheService) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *CacheService) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Stats reports hit/miss counters. Exposed as gauges on /metrics.
func (c *CacheService) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
