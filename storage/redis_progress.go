package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"basket-prices/models"
)

const (
	progressKey = "collection:progress"
	progressTTL = 24 * time.Hour

	connectionTimeout = 5 * time.Second
)

// RedisProgressMirror keeps the latest progress snapshot in Redis so that
// processes other than the one running the collection can report on it.
type RedisProgressMirror struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisProgressMirror connects to the Redis instance at url (redis://...).
func NewRedisProgressMirror(url string) (*RedisProgressMirror, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisProgressMirrorWithClient(client), nil
}

// NewRedisProgressMirrorWithClient wraps an existing client.
func NewRedisProgressMirrorWithClient(client *redis.Client) *RedisProgressMirror {
	return &RedisProgressMirror{client: client, key: progressKey, ttl: progressTTL}
}

// Publish overwrites the mirrored snapshot.
func (m *RedisProgressMirror) Publish(ctx context.Context, snap models.ProgressSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: encode progress: %w", err)
	}
	if err := m.client.Set(ctx, m.key, payload, m.ttl).Err(); err != nil {
		return fmt.Errorf("redis: publish progress: %w", err)
	}
	return nil
}

// Load returns the last mirrored snapshot, or ErrNotFound when nothing has
// been published yet or it expired.
func (m *RedisProgressMirror) Load(ctx context.Context) (*models.ProgressSnapshot, error) {
	payload, err := m.client.Get(ctx, m.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("progress snapshot: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis: load progress: %w", err)
	}

	var snap models.ProgressSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("redis: decode progress: %w", err)
	}
	return &snap, nil
}

func (m *RedisProgressMirror) Close() error {
	return m.client.Close()
}
