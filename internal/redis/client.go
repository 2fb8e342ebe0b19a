package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"moving_ops/internal/models"
)

// ErrNotFound is returned when a cached key does not exist.
var ErrNotFound = errors.New("cache entry not found")

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewClient wraps an existing go-redis client.
func NewClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Temporary data management
func (c *Client) SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal temp data: %w", err)
	}

	return c.rdb.Set(ctx, "temp:"+key, jsonData, ttl).Err()
}

func (c *Client) GetTempData(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, "temp:"+key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get temp data: %w", err)
	}

	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) DeleteTempData(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, "temp:"+key).Err()
}

// Rate history log. One list per employment, entries only ever appended.
func rateHistoryKey(employmentID uint) string {
	return "rate_history:" + strconv.FormatUint(uint64(employmentID), 10)
}

func (c *Client) AppendRateChange(ctx context.Context, employmentID uint, change models.RateChange, ttl time.Duration) error {
	jsonData, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal rate change: %w", err)
	}

	key := rateHistoryKey(employmentID)
	pipe := c.rdb.TxPipeline()
	pipe.RPush(ctx, key, jsonData)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append rate change: %w", err)
	}
	return nil
}

func (c *Client) GetRateHistory(ctx context.Context, employmentID uint) ([]models.RateChange, error) {
	vals, err := c.rdb.LRange(ctx, rateHistoryKey(employmentID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get rate history: %w", err)
	}

	history := make([]models.RateChange, 0, len(vals))
	for _, v := range vals {
		var change models.RateChange
		if err := json.Unmarshal([]byte(v), &change); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rate change: %w", err)
		}
		history = append(history, change)
	}
	return history, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
