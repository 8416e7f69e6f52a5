package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/app"
	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/handlers"
)

func registerHealthRoutes(r *gin.Engine, cfg *app.Config, db *gorm.DB, store cache.Store) {
	if cfg.Monitoring.Health.Enabled {
		health := handlers.Health(db, store)
		r.GET("/health", health)
		r.GET("/api/health", health)
	} else {
		r.GET("/health", disabledHealthHandler)
		r.GET("/api/health", disabledHealthHandler)
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}
}

func disabledHealthHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"status":  "disabled",
	})
}
