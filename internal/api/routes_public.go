package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ichwanardi/portfolio/internal/app"
	"github.com/ichwanardi/portfolio/internal/handlers"
	"github.com/ichwanardi/portfolio/internal/middleware"
)

func registerPublicRoutes(api *gin.RouterGroup, cfg *app.Config, content *handlers.ContentHandler) {
	public := api.Group("")
	public.Use(middleware.CacheControl(cfg.Server.HTTPCache.MaxAge, cfg.Server.HTTPCache.StaleWhileRevalidate))
	{
		public.GET("/home", content.Home)

		public.GET("/blogs", content.ListBlogs)
		public.GET("/blogs/slugs", content.BlogSlugs)
		public.GET("/blogs/id/:id", content.BlogByID)
		public.GET("/blogs/:slug", content.BlogBySlug)

		public.GET("/projects", content.ListProjects)
		public.GET("/projects/:id", content.Project)

		public.GET("/updates", content.ListUpdates)
	}
}
