package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ichwanardi/portfolio/internal/services"
	"github.com/ichwanardi/portfolio/pkg/response"
)

// ContentHandler serves the public read endpoints. Bodies are written exactly as
// the services return them, which is also what the cache stores.
type ContentHandler struct {
	blogs    *services.BlogService
	projects *services.ProjectService
	updates  *services.UpdateService
	home     *services.HomeService
}

// NewContentHandler wires the public content handler.
func NewContentHandler(blogs *services.BlogService, projects *services.ProjectService, updates *services.UpdateService, home *services.HomeService) *ContentHandler {
	return &ContentHandler{blogs: blogs, projects: projects, updates: updates, home: home}
}

// GET /api/home
func (h *ContentHandler) Home(c *gin.Context) {
	home, err := h.home.Aggregate(requestContext(c))
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Content(c, home)
}

// GET /api/blogs?page=&limit=
func (h *ContentHandler) ListBlogs(c *gin.Context) {
	page, limit := services.NormalisePage(parseIntQuery(c, "page", 1), parseIntQuery(c, "limit", services.DefaultBlogLimit))
	list, err := h.blogs.List(requestContext(c), page, limit)
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Content(c, list)
}

// GET /api/blogs/slugs
func (h *ContentHandler) BlogSlugs(c *gin.Context) {
	slugs, err := h.blogs.ListSlugs(requestContext(c))
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Content(c, slugs)
}

// GET /api/blogs/:slug
func (h *ContentHandler) BlogBySlug(c *gin.Context) {
	detail, err := h.blogs.GetBySlug(requestContext(c), c.Param("slug"))
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Content(c, detail)
}

// GET /api/blogs/id/:id
func (h *ContentHandler) BlogByID(c *gin.Context) {
	detail, err := h.blogs.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Content(c, detail)
}

// GET /api/projects
func (h *ContentHandler) ListProjects(c *gin.Context) {
	projects, err := h.projects.List(requestContext(c))
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Content(c, projects)
}

// GET /api/projects/:id
func (h *ContentHandler) Project(c *gin.Context) {
	project, err := h.projects.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Content(c, project)
}

// GET /api/updates?limit=
func (h *ContentHandler) ListUpdates(c *gin.Context) {
	updates, err := h.updates.List(requestContext(c), parseIntQuery(c, "limit", services.DefaultUpdateLimit))
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Content(c, updates)
}
