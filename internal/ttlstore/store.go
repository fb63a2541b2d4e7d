// ABOUTME: Store interface and JSON codec helpers for TTL-bound key-value state.
// ABOUTME: Backends: memory (default), sqlite, redis.

package ttlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrClosed is returned when an operation is attempted on a closed store.
var ErrClosed = errors.New("store closed")

// Store is a keyed byte store with per-key TTL. A Put always resets the TTL
// window for its key. Get reports absence (not an error) for expired or
// never-written keys.
type Store interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// PutJSON marshals v and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Put(ctx, key, data, ttl)
}

// GetJSON fetches key and unmarshals it into v. Returns false if the key is
// absent or expired.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}
