package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisStorage keeps session data in Redis. Every write refreshes the key's
// TTL; a zero TTL keeps keys forever.
type RedisStorage struct {
	store  cmdable
	prefix string
	ttl    time.Duration
}

// OpenRedis parses url, verifies connectivity and returns the raw client for
// shutdown.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return raw, nil
}

func NewRedisStorage(c *redis.Client, prefix string, ttl time.Duration) *RedisStorage {
	return newRedisStorage(c, prefix, ttl)
}

func newRedisStorage(c cmdable, prefix string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{store: c, prefix: prefix, ttl: ttl}
}

func (s *RedisStorage) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.store.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	return s.store.Del(ctx, s.key(key)).Err()
}

func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.store.Ping(ctx).Err()
}
