package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds Redis connection settings. Enabled=false yields a client
// whose operations are all no-ops, so callers never branch on it.
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	Enabled      bool
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Client struct {
	rdb     *redis.Client
	enabled bool
	logger  *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if !cfg.Enabled {
		logger.Info("Redis disabled, caching falls back to in-process store")
		return &Client{enabled: false, logger: logger}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	client := &Client{rdb: rdb, enabled: true, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		// Degrade rather than refuse to start; the cache layer has an
		// in-process fallback.
		logger.Warn("Failed to connect to Redis, disabling",
			zap.String("address", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
			zap.Error(err),
		)
		client.enabled = false
		return client
	}

	logger.Info("Connected to Redis",
		zap.String("address", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("database", cfg.DB),
	)

	return client
}

func (c *Client) IsEnabled() bool {
	return c.enabled
}

func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if !c.enabled || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Get returns the raw cached value; (nil, nil) means cache miss
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.enabled {
		return nil, nil
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		c.logger.Warn("Redis get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return data, nil
}

// Set stores the value with a TTL
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !c.enabled {
		return nil
	}

	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("Redis set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Delete removes a key
func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}
