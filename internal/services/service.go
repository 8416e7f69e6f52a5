package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/pkg/logger"
)

// DefaultQueryTimeout bounds each backing-store query when Config leaves it unset.
const DefaultQueryTimeout = 5 * time.Second

// Config holds the settings shared by the content services.
type Config struct {
	QueryTimeout      time.Duration
	InvalidateOnWrite bool
	Clock             func() time.Time
	Logger            *zap.Logger
}

type base struct {
	db         *gorm.DB
	cache      *cache.Accessor
	timeout    time.Duration
	invalidate bool
	now        func() time.Time
	log        *zap.Logger
}

func newBase(name string, db *gorm.DB, accessor *cache.Accessor, cfg Config) (base, error) {
	if db == nil {
		return base{}, fmt.Errorf("%s: db is required", name)
	}
	if accessor == nil {
		accessor = cache.NewAccessor(nil)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	clock := cfg.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	log := cfg.Logger
	if log == nil {
		log = logger.WithModule("services")
	}

	return base{
		db:         db,
		cache:      accessor,
		timeout:    timeout,
		invalidate: cfg.InvalidateOnWrite,
		now:        clock,
		log:        log.With(zap.String("service", name)),
	}, nil
}

func ensuredContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// query returns a handle bound to ctx and the query timeout.
func (b base) query(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ensuredContext(ctx), b.timeout)
	return b.db.WithContext(ctx), cancel
}

// storeFailure logs a backing-store error with the resource and key being
// resolved and returns it wrapped.
func (b base) storeFailure(resource, key string, err error) error {
	b.log.Error("backing store query failed",
		zap.String("resource", resource),
		zap.String("key", key),
		zap.Error(err),
	)
	return fmt.Errorf("%s %q: %w", resource, key, err)
}

func (b base) evict(ctx context.Context, keys ...string) {
	if !b.invalidate {
		return
	}
	b.cache.Invalidate(ctx, dedupeKeys(keys)...)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func dedupeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func normaliseStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
