package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/artifact-search/internal/logger"
)

// Cache stores opaque values with a time-to-live.
type Cache interface {
	// Get returns the value and true on a live hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key if present.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// GetOrFetch returns the cached value for key, or calls fetch and caches its
// result. A nil cache always fetches. Cache errors are logged and treated
// as misses.
// Concurrent misses for the same key may fetch more than once.
func GetOrFetch(
	ctx context.Context,
	c Cache,
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	if c != nil {
		v, ok, err := c.Get(ctx, key)
		if err != nil {
			logger.Debug("Cache get %s: %v", key, err)
		} else if ok {
			return v, nil
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if c != nil {
		if err := c.Set(ctx, key, v, ttl); err != nil {
			logger.Warn("Cache set %s: %v", key, err)
		}
	}
	return v, nil
}
