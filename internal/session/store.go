// Package session keeps per-browser portal state (auth token, company,
// registration draft, flash notices) in a server-side store addressed by a
// cookie.
package session

import (
	"context"
	"time"
)

// Store is a string key/value store with per-key expiry. SetNX and
// DeleteIfValue give callers a simple lease.
type Store interface {
	// Get returns ok=false when the key is absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// DeleteIfValue removes key only while it still holds value.
	DeleteIfValue(ctx context.Context, key, value string) error
}

const keyPrefix = "expo:session:"

func sessionKey(id, name string) string {
	return keyPrefix + id + ":" + name
}
