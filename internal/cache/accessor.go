package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ichwanardi/portfolio/pkg/logger"
	"github.com/ichwanardi/portfolio/pkg/metrics"
)

const defaultOperationTimeout = 500 * time.Millisecond

// Accessor wraps a Store with cache-aside reads. Store failures are absorbed:
// a failed read is a miss and a failed write is logged and dropped.
type Accessor struct {
	store   Store
	timeout time.Duration
	log     *zap.Logger
}

// AccessorOption configures an Accessor.
type AccessorOption func(*Accessor)

// WithOperationTimeout bounds every individual store call. Zero disables the bound.
func WithOperationTimeout(timeout time.Duration) AccessorOption {
	return func(a *Accessor) {
		a.timeout = timeout
	}
}

// WithLogger overrides the logger used for absorbed store failures.
func WithLogger(log *zap.Logger) AccessorOption {
	return func(a *Accessor) {
		if log != nil {
			a.log = log
		}
	}
}

// NewAccessor builds an Accessor. A nil store degrades to pure passthrough.
func NewAccessor(store Store, opts ...AccessorOption) *Accessor {
	if store == nil {
		store = NopStore{}
	}
	a := &Accessor{
		store:   store,
		timeout: defaultOperationTimeout,
		log:     logger.WithModule("cache"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Store exposes the underlying store.
func (a *Accessor) Store() Store {
	return a.store
}

func (a *Accessor) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = ensureContext(ctx)
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *Accessor) read(ctx context.Context, key string) ([]byte, bool) {
	opCtx, cancel := a.bounded(ctx)
	defer cancel()

	raw, ok, err := a.store.Get(opCtx, key)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(Namespace(key), "error").Inc()
		a.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues(Namespace(key), "miss").Inc()
		return nil, false
	}
	return raw, true
}

func (a *Accessor) write(ctx context.Context, key string, value []byte, ttl time.Duration) {
	opCtx, cancel := a.bounded(ctx)
	defer cancel()

	if err := a.store.Set(opCtx, key, value, ttl); err != nil {
		metrics.CacheWriteFailures.WithLabelValues(Namespace(key)).Inc()
		a.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// GetOrLoad returns the cached value for key, or calls load, caches its result
// for ttl and returns it. Errors from load are returned and never cached.
// Concurrent misses on one key each call load.
func GetOrLoad[T any](ctx context.Context, a *Accessor, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if a == nil {
		a = NewAccessor(nil)
	}

	if raw, ok := a.read(ctx, key); ok {
		var cached T
		err := json.Unmarshal(raw, &cached)
		if err == nil {
			metrics.CacheLookups.WithLabelValues(Namespace(key), "hit").Inc()
			return cached, nil
		}
		metrics.CacheLookups.WithLabelValues(Namespace(key), "error").Inc()
		a.log.Warn("cache entry undecodable", zap.String("key", key), zap.Error(err))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		a.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	a.write(ctx, key, encoded, ttl)

	return value, nil
}

// Invalidate removes keys on a best-effort basis.
func (a *Accessor) Invalidate(ctx context.Context, keys ...string) {
	if a == nil || len(keys) == 0 {
		return
	}
	opCtx, cancel := a.bounded(ctx)
	defer cancel()

	if err := a.store.Delete(opCtx, keys...); err != nil {
		a.log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
