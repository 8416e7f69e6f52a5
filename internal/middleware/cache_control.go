package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl marks GET responses as cacheable by shared caches (CDN). The hint is
// independent of the internal cache TTLs; error responses replace it with no-store.
func CacheControl(maxAge, staleWhileRevalidate time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
		int(maxAge.Seconds()), int(staleWhileRevalidate.Seconds()))

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && maxAge > 0 {
			c.Header("Cache-Control", value)
		}
		c.Next()
	}
}

// NoStore forbids any caching, used for admin and auth routes.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
