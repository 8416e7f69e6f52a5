package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ichwanardi/portfolio/internal/app"
	iauth "github.com/ichwanardi/portfolio/internal/auth"
	"github.com/ichwanardi/portfolio/internal/handlers"
	"github.com/ichwanardi/portfolio/internal/middleware"
)

type adminHandlers struct {
	Blogs    *handlers.AdminBlogHandler
	Projects *handlers.AdminProjectHandler
	Updates  *handlers.AdminUpdateHandler
}

func registerAdminRoutes(api *gin.RouterGroup, cfg *app.Config, sessions *iauth.SessionService, h adminHandlers) {
	admin := api.Group("/admin")
	admin.Use(middleware.NoStore())
	admin.Use(csrfMiddleware(cfg)...)
	admin.Use(middleware.AdminSession(sessions, cfg.Auth.Session.CookieName))

	blogs := admin.Group("/blogs")
	{
		blogs.GET("", h.Blogs.List)
		blogs.POST("", h.Blogs.Create)
		blogs.POST("/import", h.Blogs.Import)
		blogs.POST("/backfill-slugs", h.Blogs.BackfillSlugs)
		blogs.PUT("/:id", h.Blogs.Update)
		blogs.DELETE("/:id", h.Blogs.Delete)
	}

	projects := admin.Group("/projects")
	{
		projects.GET("", h.Projects.List)
		projects.POST("", h.Projects.Create)
		projects.PUT("/:id", h.Projects.Update)
		projects.DELETE("/:id", h.Projects.Delete)
	}

	updates := admin.Group("/updates")
	{
		updates.POST("", h.Updates.Create)
		updates.DELETE("/:id", h.Updates.Delete)
	}
}
