package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// entry wraps a cached payload with its absolute deadline. Redis key TTLs
// give us the sliding window (each hit refreshes it); the deadline inside
// the entry caps total lifetime regardless of access pattern. Whichever
// elapses first evicts the payload.
type entry struct {
	Deadline time.Time       `json:"deadline"`
	Payload  json.RawMessage `json:"payload"`
}

// RedisCache implements Cache on a shared Redis backend.
type RedisCache struct {
	client      *redis.Client
	absoluteTTL time.Duration
	slidingTTL  time.Duration
}

// NewRedisCache wraps client with the fixed expiration policy.
func NewRedisCache(client *redis.Client, absoluteTTL, slidingTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      client,
		absoluteTTL: absoluteTTL,
		slidingTTL:  slidingTTL,
	}
}

func (c *RedisCache) Set(ctx context.Context, key, payload string) error {
	raw, err := wrapEntry(payload, time.Now().Add(c.absoluteTTL))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.slidingTTL).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	raw, err := c.client.GetEx(ctx, key, c.slidingTTL).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	payload, expired := unwrapEntry([]byte(raw), time.Now())
	if expired {
		// Past the absolute window; drop the key so the next read refills.
		_ = c.client.Del(ctx, key).Err()
		return "", false, nil
	}
	return payload, true, nil
}

func (c *RedisCache) Remove(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func wrapEntry(payload string, deadline time.Time) ([]byte, error) {
	return json.Marshal(entry{
		Deadline: deadline,
		Payload:  json.RawMessage(payload),
	})
}

// unwrapEntry extracts the payload and reports whether the absolute window
// has elapsed. Raw values that predate the envelope are passed through as-is.
func unwrapEntry(raw []byte, now time.Time) (payload string, expired bool) {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Deadline.IsZero() {
		return string(raw), false
	}
	if now.After(e.Deadline) {
		return "", true
	}
	return string(e.Payload), false
}
