package api

import (
	"fmt"
	"io/fs"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/app"
	iauth "github.com/ichwanardi/portfolio/internal/auth"
	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/handlers"
	"github.com/ichwanardi/portfolio/internal/middleware"
	"github.com/ichwanardi/portfolio/internal/services"
)

// Dependencies carries everything the router needs. Static and RateStore are optional.
type Dependencies struct {
	Config        *app.Config
	DB            *gorm.DB
	CacheStore    cache.Store
	RateStore     middleware.RateStore
	Authenticator *iauth.Authenticator
	Sessions      *iauth.SessionService
	Blogs         *services.BlogService
	Projects      *services.ProjectService
	Updates       *services.UpdateService
	Home          *services.HomeService
	// Static is the built frontend. When nil, unknown routes return a JSON 404.
	Static fs.FS
}

func (d Dependencies) validate() error {
	switch {
	case d.Config == nil:
		return fmt.Errorf("config must be provided")
	case d.DB == nil:
		return fmt.Errorf("database handle must be provided")
	case d.Authenticator == nil:
		return fmt.Errorf("authenticator must be provided")
	case d.Sessions == nil:
		return fmt.Errorf("session service must be provided")
	case d.Blogs == nil || d.Projects == nil || d.Updates == nil || d.Home == nil:
		return fmt.Errorf("content services must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	cfg := deps.Config

	rateStore := deps.RateStore
	if rateStore == nil {
		rateStore = middleware.NewMemoryRateStore()
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger("/health", cfg.Monitoring.Prometheus.Endpoint))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	registerHealthRoutes(r, cfg, deps.DB, deps.CacheStore)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(rateStore, middleware.RateLimitOptions{
		Name:   "api",
		Limit:  cfg.Server.RateLimit.Requests,
		Window: cfg.Server.RateLimit.Window,
	}))

	registerPublicRoutes(api, cfg, handlers.NewContentHandler(deps.Blogs, deps.Projects, deps.Updates, deps.Home))
	registerAuthRoutes(api, cfg, rateStore, handlers.NewAuthHandler(deps.Authenticator, deps.Sessions, cfg.Auth.Session.CookieName))
	registerAdminRoutes(api, cfg, deps.Sessions, adminHandlers{
		Blogs:    handlers.NewAdminBlogHandler(deps.Blogs),
		Projects: handlers.NewAdminProjectHandler(deps.Projects),
		Updates:  handlers.NewAdminUpdateHandler(deps.Updates),
	})

	if deps.Static != nil {
		spa, err := handlers.NewSPAHandler(deps.Static, deps.Blogs, deps.Projects, handlers.SiteMeta{
			URL:         cfg.Server.SiteURL,
			Name:        cfg.Server.SiteName,
			Description: cfg.Server.SiteDescription,
			Image:       cfg.Server.SiteImage,
		})
		if err != nil {
			return nil, err
		}
		r.NoRoute(spa.Serve)
	} else {
		r.NoRoute(middleware.NotFoundHandler)
	}

	return r, nil
}

// csrfMiddleware returns the CSRF check when enabled, otherwise nothing.
func csrfMiddleware(cfg *app.Config) []gin.HandlerFunc {
	if !cfg.Server.CSRF.Enabled {
		return nil
	}
	return []gin.HandlerFunc{middleware.CSRF()}
}
