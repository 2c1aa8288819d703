package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const inFlightMarker = "__in_flight__"

// RedisIdempotencyStore keeps idempotency state in Redis so that
// retried requests are deduplicated across server instances.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore creates a store backed by the given client.
// The connection is verified up front.
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) (*RedisIdempotencyStore, error) {
	if keyPrefix == "" {
		keyPrefix = "idempotency:"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}, nil
}

// Begin claims the key with SETNX. The loser of the race reads back
// whatever the winner stored.
func (s *RedisIdempotencyStore) Begin(ctx context.Context, key string, ttl time.Duration) (*StoredResponse, error) {
	redisKey := s.keyPrefix + key

	claimed, err := s.client.SetNX(ctx, redisKey, inFlightMarker, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if claimed {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		// claim expired between SETNX and GET, treat as in flight and
		// let the client retry
		return nil, ErrInFlight
	}
	if err != nil {
		return nil, fmt.Errorf("read idempotency key: %w", err)
	}
	if raw == inFlightMarker {
		return nil, ErrInFlight
	}

	var resp StoredResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode stored response: %w", err)
	}
	return &resp, nil
}

// Complete replaces the in-flight marker with the serialized response
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, resp *StoredResponse, ttl time.Duration) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode stored response: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("store idempotency response: %w", err)
	}
	return nil
}

// Release drops the claim so the request can be retried
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ IdempotencyStore = (*RedisIdempotencyStore)(nil)
