package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/xerrors"
)

// RedisStore keeps entries in Redis. Each call borrows a connection from the
// client's pool for the duration of one command
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects lazily; the first command dials
func NewRedisStore(opts *redis.Options) *RedisStore {
	return &RedisStore{client: redis.NewClient(opts)}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, Unavailable(xerrors.Errorf("redis get %s: %w", key, err))
	}
	return raw, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return Unavailable(xerrors.Errorf("redis set %s: %w", key, err))
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return Unavailable(xerrors.Errorf("redis del %s: %w", key, err))
	}
	return nil
}

// Ping checks connectivity. Used at startup to log a degraded cache early
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return Unavailable(xerrors.Errorf("redis ping: %w", err))
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
