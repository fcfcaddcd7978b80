package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/roster/internal/models"
)

type RedisCache struct {
	redis *redis.Client
	key   string
	ttl   time.Duration
}

func NewRedisCache(url, key string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if key == "" {
		key = DefaultKey
	}
	return &RedisCache{redis: client, key: key, ttl: ttl}, nil
}

// Save overwrites the snapshot. A zero ttl keeps it forever.
func (c *RedisCache) Save(ctx context.Context, students []models.Student) error {
	data, err := encode(students)
	if err != nil {
		return err
	}
	if err := c.redis.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

func (c *RedisCache) Load(ctx context.Context) ([]models.Student, error) {
	data, err := c.redis.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return decode(data)
}

func (c *RedisCache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
