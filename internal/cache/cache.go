package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a non-authoritative key/value shadow of the database. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// FlushPrefix removes every key starting with prefix and returns how many were removed.
	FlushPrefix(ctx context.Context, prefix string) (int64, error)
}

// Remember returns the cached value for key, or calls producer and caches its result
// for ttl. Cache failures are logged and never fail the read; producer errors are
// returned as is and nothing is cached.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, producer func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return producer(ctx)
	}

	raw, err := c.Get(ctx, key)
	switch {
	case err == nil:
		var cached T
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			return cached, nil
		}
		slog.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "error", jsonErr)
	case !errors.Is(err, ErrMiss):
		slog.WarnContext(ctx, "cache read failed, falling through", "key", key, "error", err)
	}

	value, err := producer(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		slog.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
		return value, nil
	}
	if err := c.Set(ctx, key, encoded, ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return value, nil
}
