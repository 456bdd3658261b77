package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spcgrid/spcgrid/internal/config"
	"github.com/spcgrid/spcgrid/internal/spc"
)

// redisCache stores compressed results in Redis with a TTL
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisCache(cfg config.CacheConfig) (*redisCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		// Fallback to plain host:port
		opts = &redis.Options{
			Addr: cfg.RedisURL,
			DB:   cfg.RedisDB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (*spc.Result, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache read failed: %w", err)
	}

	result, err := decodeResult(data)
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, result *spc.Result) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
