// Package cache holds the best-effort read cache in front of the store. The
// cache is never authoritative: every failure here is logged by callers and
// the store result wins.
package cache

import "context"

// Cache stores opaque serialized payloads under deterministic keys. The
// orchestrator owns (de)serialization; implementations own expiration.
type Cache interface {
	Set(ctx context.Context, key, payload string) error

	// Get returns the payload and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)

	Remove(ctx context.Context, key string) error
}
