package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ichwanardi/portfolio/internal/app"
	"github.com/ichwanardi/portfolio/internal/handlers"
	"github.com/ichwanardi/portfolio/internal/middleware"
	"github.com/ichwanardi/portfolio/pkg/metrics"
)

func registerAuthRoutes(api *gin.RouterGroup, cfg *app.Config, rateStore middleware.RateStore, authHandler *handlers.AuthHandler) {
	auth := api.Group("/auth")
	auth.Use(middleware.NoStore())
	auth.Use(csrfMiddleware(cfg)...)

	attempts, window := cfg.Auth.LoginLimit()
	loginLimit := middleware.RateLimit(rateStore, middleware.RateLimitOptions{
		Name:   "login",
		Limit:  attempts,
		Window: window,
		OnLimited: func(*gin.Context) {
			metrics.LoginAttempts.WithLabelValues("limited").Inc()
		},
	})

	{
		auth.POST("/login", loginLimit, authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authHandler.Me)
	}
}
