package middleware

import (
	"context"
	"time"

	"github.com/ichwanardi/portfolio/internal/cache"
)

// RateStore coordinates rate limiting counters for a specific key.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// NewRateStore adapts a cache Store so fixed-window counters live wherever the
// content cache lives (redis, database or process memory). A NopStore cannot
// count, so counters move to process memory instead.
func NewRateStore(store cache.Store) RateStore {
	switch store.(type) {
	case nil:
		return nil
	case cache.NopStore:
		return NewMemoryRateStore()
	}
	return &storeRateStore{store: store}
}

// NewMemoryRateStore returns a process-local RateStore.
func NewMemoryRateStore() RateStore {
	return NewRateStore(cache.NewMemoryStore())
}

type storeRateStore struct {
	store cache.Store
}

func (s *storeRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	count, ttl, err := s.store.IncrementWithTTL(ctx, "ratelimit:"+key, window)
	return int(count), ttl, err
}
