package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// requestContext returns the request context, or Background when the gin
// context carries no request.
func requestContext(c *gin.Context) context.Context {
	if c != nil && c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}

// parseIntQuery reads an integer query parameter. Missing or malformed values
// yield fallback; the services clamp the range.
func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
