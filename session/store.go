package session

import (
	"context"
	"encoding/json"
	"fmt"
)

// Well-known keys.
const (
	KeyAuthToken = "auth_token"
	KeyUser      = "user"
)

// Store is a key-value session store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Backend is a Store that owns resources released by Close.
type Backend interface {
	Store
	Close() error
}

// GetJSON decodes the JSON value stored under key into v.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("session: decode %q: %w", key, err)
	}
	return true, nil
}

// SetJSON stores the JSON encoding of v under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, string(b))
}

// Clear deletes every key, returning the first failure after trying all.
func Clear(ctx context.Context, s Store, keys ...string) error {
	var first error
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil && first == nil {
			first = err
		}
	}
	return first
}
