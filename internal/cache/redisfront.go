package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"convflow/internal/conversation"
)

// SessionTTL is how long an idle user's state survives in Redis before
// expiring, refreshed on every read and write.
const SessionTTL = 40 * time.Minute

const sessionKeyPrefix = "session:"

// RedisFront is an optional accelerator tier in front of UserCache's
// in-process map: a Get that misses here still falls through to the
// durable store, but a hit here skips it entirely.
type RedisFront struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFront connects using the REDIS_URL environment variable.
func NewRedisFront(ctx context.Context, ttl time.Duration) (*RedisFront, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("cache: REDIS_URL environment variable is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parsing REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: connecting to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &RedisFront{client: client, ttl: ttl}, nil
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

// Get returns the cached state for userID, or (nil, false) on a miss.
// A hit refreshes the key's TTL.
func (r *RedisFront) Get(ctx context.Context, userID string) (*conversation.State, bool, error) {
	data, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: reading session %q: %w", userID, err)
	}

	var state conversation.State
	if err := sonic.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("cache: decoding session %q: %w", userID, err)
	}

	r.client.Expire(ctx, sessionKey(userID), r.ttl)
	return &state, true, nil
}

// Set stores state for userID with a fresh TTL.
func (r *RedisFront) Set(ctx context.Context, userID string, state *conversation.State) error {
	data, err := sonic.Marshal(state)
	if err != nil {
		return fmt.Errorf("cache: encoding session %q: %w", userID, err)
	}
	if err := r.client.Set(ctx, sessionKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache: writing session %q: %w", userID, err)
	}
	return nil
}

// Delete drops userID's cached session, e.g. on an explicit restart.
func (r *RedisFront) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("cache: deleting session %q: %w", userID, err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (r *RedisFront) Close() error { return r.client.Close() }
