package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOffsetStore persists the transport update offset in Redis so a
// restart cycle resumes after the last processed update instead of
// replaying it.
type RedisOffsetStore struct {
	client *redis.Client
	key    string
}

// NewRedisOffsetStore connects to Redis and verifies it with a ping.
func NewRedisOffsetStore(addr, password string, db int, keyPrefix string) (*RedisOffsetStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisOffsetStore{
		client: client,
		key:    keyPrefix + ":update_offset",
	}, nil
}

// Load returns the persisted offset, or 0 when none exists yet.
func (s *RedisOffsetStore) Load(ctx context.Context) (int64, error) {
	off, err := s.client.Get(ctx, s.key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get offset: %w", err)
	}
	return off, nil
}

// Store persists the offset without expiry.
func (s *RedisOffsetStore) Store(ctx context.Context, offset int64) error {
	if err := s.client.Set(ctx, s.key, offset, 0).Err(); err != nil {
		return fmt.Errorf("redis set offset: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisOffsetStore) Close() error {
	return s.client.Close()
}
