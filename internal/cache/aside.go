package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern: populate dest from the cached
// value at key if present, otherwise run load (which fills dest), then store
// dest under key with the given TTL. A missing or failing Redis never fails
// the read; the loader result is used directly.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if client != nil {
		raw, err := client.Get(ctx, key).Bytes()
		if err == nil {
			if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
				return nil
			}
			// Corrupt entry: drop it and fall through to the loader.
			client.Del(ctx, key)
		} else if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		}
	}

	if err := load(); err != nil {
		return err
	}

	if client != nil {
		if data, jsonErr := json.Marshal(dest); jsonErr == nil {
			if setErr := client.Set(ctx, key, data, ttl).Err(); setErr != nil {
				slog.WarnContext(ctx, "cache write failed", "key", key, "error", setErr)
			}
		}
	}

	return nil
}
