// Package snapshot persists authoritative per-room state in an expiring
// key-value store so a restarted service can recover it.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a snapshot survives without being rewritten.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("snapshot not found")

type Store interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

func ColumnKey(roomID string, columnID int) string {
	return fmt.Sprintf("room:%s:column:%d", roomID, columnID)
}

func PowerUpsKey(roomID, playerID string) string {
	return fmt.Sprintf("room:%s:player:%s:power_ups", roomID, playerID)
}

func EventsKey(roomID string) string {
	return fmt.Sprintf("room:%s:random_events", roomID)
}

// RedisStore stores JSON encoded values with SET ... EX.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string, v any) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete %d keys: %w", len(keys), err)
	}
	return nil
}

// TTL reports the expiry applied to every write.
func (s *RedisStore) TTL() time.Duration { return s.ttl }

// Connect opens a Redis client for addr and checks it with PING. The store
// is returned even when the ping fails so callers can run degraded.
func Connect(ctx context.Context, addr string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	store := NewRedisStore(client, ttl)
	if err := client.Ping(ctx).Err(); err != nil {
		return store, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return store, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
