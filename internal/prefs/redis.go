package prefs

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/pricediary/internal/models"
)

const (
	keyPrefix     = "pricediary:prefs:"
	fieldCategory = "category"
	fieldStore    = "store"
)

// RedisStore keeps preferences in a Redis hash per user.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func key(userID string) string {
	return keyPrefix + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) (Preferences, error) {
	values, err := s.client.HGetAll(ctx, key(userID)).Result()
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	return Preferences{
		Category: models.Category(values[fieldCategory]),
		Store:    values[fieldStore],
	}, nil
}

func (s *RedisStore) Remember(ctx context.Context, userID string, p Preferences) error {
	values := make(map[string]any, 2)
	if p.Category != "" {
		values[fieldCategory] = string(p.Category)
	}
	if p.Store != "" {
		values[fieldStore] = p.Store
	}
	if len(values) == 0 {
		return nil
	}

	if err := s.client.HSet(ctx, key(userID), values).Err(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}
