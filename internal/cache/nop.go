package cache

import (
	"context"
	"time"
)

// NopStore always misses and discards writes. It stands in for an unreachable
// cache so callers keep one code path.
type NopStore struct{}

func (NopStore) IncrementWithTTL(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, nil
}

func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NopStore) Delete(context.Context, ...string) error { return nil }

func (NopStore) Ping(context.Context) error { return nil }
