package cache

import (
	"context"
	"time"
)

// Store is the key-value contract shared by the cache-aside accessor and the
// login rate limiter. Get reports absence with ok=false and a nil error.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// Clock returns the current time. Stores take one so expiry can be tested
// without sleeping.
type Clock func() time.Time

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
