package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/config"
)

// Client wraps the Redis connection.
// Used for the slot occupancy read-model cache and signup rate limiting;
// the service degrades gracefully when Redis is unavailable.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient connects and pings Redis.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Occupancy read-model cache ──

const occupancyPrefix = "occupancy:event:"

// GetOccupancy returns the cached slot→reserved map for an event, or nil on miss.
func (c *Client) GetOccupancy(ctx context.Context, eventID string) (map[string]int, error) {
	raw, err := c.rdb.Get(ctx, occupancyPrefix+eventID).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var counts map[string]int
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// SetOccupancy caches the slot→reserved map for an event.
func (c *Client) SetOccupancy(ctx context.Context, eventID string, counts map[string]int, ttl time.Duration) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, occupancyPrefix+eventID, raw, ttl).Err()
}

// InvalidateOccupancy drops the cached occupancy after a successful mutation.
func (c *Client) InvalidateOccupancy(ctx context.Context, eventID string) error {
	return c.rdb.Del(ctx, occupancyPrefix+eventID).Err()
}

// ── Rate limiting ──

// CheckRateLimit implements a fixed-window counter per key.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
