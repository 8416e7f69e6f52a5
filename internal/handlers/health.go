package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/database"
	"github.com/ichwanardi/portfolio/pkg/response"
)

const healthProbeTimeout = 2 * time.Second

// Health reports database and cache reachability. A failing cache only degrades the
// status because content is still served from the database.
func Health(db *gorm.DB, store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(requestContext(c), healthProbeTimeout)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		checks := gin.H{"database": "ok", "cache": "ok"}

		if err := database.Ping(ctx, db); err != nil {
			status = "down"
			code = http.StatusServiceUnavailable
			checks["database"] = "unreachable"
		}
		if store != nil {
			if err := store.Ping(ctx); err != nil {
				if status == "ok" {
					status = "degraded"
				}
				checks["cache"] = "unreachable"
			}
		}

		c.Header("Cache-Control", "no-store")
		response.Success(c, code, gin.H{"status": status, "checks": checks})
	}
}
