package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ichwanardi/portfolio/pkg/logger"
)

const (
	defaultCacheSpec   = "@every 10m"
	defaultSessionSpec = "@hourly"
	jobTimeout         = time.Minute
)

// SessionCleaner removes expired and revoked admin sessions.
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// ExpiryPurger drops cache entries past their TTL. Stores that expire entries
// themselves (redis) need no purger.
type ExpiryPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Cleaner runs the periodic cleanup jobs on a cron scheduler.
type Cleaner struct {
	sessions SessionCleaner
	cache    ExpiryPurger
	cron     *cron.Cron
	log      *zap.Logger

	cacheSchedule   string
	sessionSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache purges.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil dependency skips its job.
func NewCleaner(sessions SessionCleaner, purger ExpiryPurger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:        sessions,
		cache:           purger,
		cacheSchedule:   defaultCacheSpec,
		sessionSchedule: defaultSessionSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the enabled jobs and launches the scheduler.
func (c *Cleaner) Start() error {
	if c.sessions == nil && c.cache == nil {
		return nil
	}

	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, c.job("session cleanup", c.cleanSessions)); err != nil {
			return fmt.Errorf("maintenance: session schedule %q: %w", c.sessionSchedule, err)
		}
	}
	if c.cache != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, c.job("cache purge", c.purgeCache)); err != nil {
			return fmt.Errorf("maintenance: cache schedule %q: %w", c.cacheSchedule, err)
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every configured cleanup, collecting all failures.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.sessions != nil {
		errs = multierr.Append(errs, c.cleanSessions(ctx))
	}
	if c.cache != nil {
		errs = multierr.Append(errs, c.purgeCache(ctx))
	}
	return errs
}

func (c *Cleaner) cleanSessions(ctx context.Context) error {
	removed, err := c.sessions.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("maintenance: sessions: %w", err)
	}
	if removed > 0 {
		c.log.Info("expired sessions removed", zap.Int64("count", removed))
	}
	return nil
}

func (c *Cleaner) purgeCache(ctx context.Context) error {
	removed, err := c.cache.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("maintenance: cache entries: %w", err)
	}
	if removed > 0 {
		c.log.Debug("expired cache entries purged", zap.Int64("count", removed))
	}
	return nil
}

func (c *Cleaner) job(name string, run func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := run(ctx); err != nil {
			c.log.Warn(name+" failed", zap.Error(err))
		}
	}
}
