package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ichwanardi/portfolio/pkg/errors"
	"github.com/ichwanardi/portfolio/pkg/logger"
	"github.com/ichwanardi/portfolio/pkg/response"
)

const rateStoreTimeout = 250 * time.Millisecond

// RateLimitOptions configures a fixed-window limiter.
type RateLimitOptions struct {
	// Name scopes the counters so two limiters never share a key.
	Name   string
	Limit  int
	Window time.Duration
	// OnLimited runs before the 429 is written.
	OnLimited func(c *gin.Context)
}

// RateLimit limits requests per client IP and route within a fixed window. Counter
// store failures let the request through.
func RateLimit(store RateStore, opts RateLimitOptions) gin.HandlerFunc {
	if store == nil {
		store = NewMemoryRateStore()
	}
	log := logger.WithModule("ratelimit")

	return func(c *gin.Context) {
		if opts.Limit <= 0 || opts.Window <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := opts.Name + "|" + c.ClientIP() + "|" + route

		ctx, cancel := context.WithTimeout(c.Request.Context(), rateStoreTimeout)
		count, resetIn, err := store.Increment(ctx, key, opts.Window)
		cancel()
		if err != nil {
			log.Warn("rate limit store unavailable", zap.String("limiter", opts.Name), zap.Error(err))
			c.Next()
			return
		}

		remaining := opts.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(opts.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(resetIn.Round(time.Second).Seconds())))

		if count > opts.Limit {
			if opts.OnLimited != nil {
				opts.OnLimited(c)
			}
			c.Header("Retry-After", strconv.Itoa(int(resetIn.Round(time.Second).Seconds())))
			response.Error(c, errors.ErrRateLimit)
			c.Abort()
			return
		}

		c.Next()
	}
}
