package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/logging"
)

// RedisTokenStore keeps the token under "<prefix>:token" in Redis.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	owned  bool
}

// NewRedisTokenStore wraps an existing client. The caller keeps ownership of
// the client; Close does not close it. A zero ttl means the key never expires.
func NewRedisTokenStore(client *redis.Client, prefix string, ttl time.Duration) *RedisTokenStore {
	if prefix == "" {
		prefix = "storefront"
	}
	return &RedisTokenStore{client: client, prefix: prefix, ttl: ttl}
}

// NewRedisTokenStoreFromURL dials redisURL and verifies the connection.
func NewRedisTokenStoreFromURL(ctx context.Context, redisURL, prefix string, ttl time.Duration) (*RedisTokenStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s := NewRedisTokenStore(client, prefix, ttl)
	s.owned = true
	logging.Store("Redis token store connected (%s, prefix=%s)", opt.Addr, s.prefix)
	return s, nil
}

func (r *RedisTokenStore) key() string {
	return r.prefix + ":" + TokenKey
}

// Load returns the stored token.
func (r *RedisTokenStore) Load(ctx context.Context) (string, bool, error) {
	token, err := r.client.Get(ctx, r.key()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load token: %w", err)
	}
	return token, true, nil
}

// Save sets the token, applying the configured TTL.
func (r *RedisTokenStore) Save(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key(), token, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Remove deletes the token key.
func (r *RedisTokenStore) Remove(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key()).Err(); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// Close closes the client if this store dialed it.
func (r *RedisTokenStore) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
