// Package redis caches recently acquired quotes so repeated lookups
// for the same symbol do not burn provider rate budget. The service
// runs fine without it.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kvaidya/stockfolio/internal/config"
	"github.com/kvaidya/stockfolio/internal/models"
)

// Client wraps the Redis client with quote cache operations.
type Client struct {
	rdb *redis.Client
}

// New creates a new Redis client and verifies the connection.
func New(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func quoteKey(symbol string) string {
	return fmt.Sprintf("quote:%s", symbol)
}

// SetQuote caches a quote as JSON with the given TTL. Only real quotes
// should land here; the pipeline never caches synthetic ones.
func (c *Client) SetQuote(ctx context.Context, quote *models.Quote, ttl time.Duration) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	return c.rdb.Set(ctx, quoteKey(quote.Symbol), data, ttl).Err()
}

// GetQuote retrieves a cached quote. A cache miss is (nil, nil), not
// an error.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	data, err := c.rdb.Get(ctx, quoteKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var quote models.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached quote: %w", err)
	}
	return &quote, nil
}
