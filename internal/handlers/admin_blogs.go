package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ichwanardi/portfolio/internal/services"
	appErrors "github.com/ichwanardi/portfolio/pkg/errors"
	"github.com/ichwanardi/portfolio/pkg/response"
)

const maxImportBytes = 1 << 20

// AdminBlogHandler exposes blog management for the admin console.
type AdminBlogHandler struct {
	blogs *services.BlogService
}

// NewAdminBlogHandler wires the admin blog handler.
func NewAdminBlogHandler(blogs *services.BlogService) *AdminBlogHandler {
	return &AdminBlogHandler{blogs: blogs}
}

type blogRequest struct {
	Title      string     `json:"title" validate:"required,max=200"`
	Slug       string     `json:"slug" validate:"omitempty,slug,max=200"`
	Category   string     `json:"category" validate:"max=100"`
	Excerpt    string     `json:"excerpt" validate:"max=500"`
	Content    string     `json:"content" validate:"required"`
	CoverImage string     `json:"coverImage" validate:"weburl,max=500"`
	Tags       []string   `json:"tags" validate:"max=20,dive,max=50"`
	Date       *time.Time `json:"date"`
}

func (r blogRequest) input() services.BlogInput {
	return services.BlogInput{
		Title:      r.Title,
		Slug:       r.Slug,
		Category:   r.Category,
		Excerpt:    r.Excerpt,
		Content:    r.Content,
		CoverImage: r.CoverImage,
		Tags:       r.Tags,
		Date:       r.Date,
	}
}

// GET /api/admin/blogs
func (h *AdminBlogHandler) List(c *gin.Context) {
	blogs, err := h.blogs.ListAll(requestContext(c))
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusOK, blogs)
}

// POST /api/admin/blogs
func (h *AdminBlogHandler) Create(c *gin.Context) {
	var req blogRequest
	if !bindAndValidate(c, &req) {
		return
	}

	blog, err := h.blogs.Create(requestContext(c), req.input())
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusCreated, blog)
}

// POST /api/admin/blogs/import
func (h *AdminBlogHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes+1))
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("unable to read request body"))
		return
	}
	if len(body) > maxImportBytes {
		response.Error(c, appErrors.NewBadRequest("markdown document exceeds 1 MiB"))
		return
	}
	if len(body) == 0 {
		response.Error(c, appErrors.NewBadRequest("markdown document is required"))
		return
	}

	blog, err := h.blogs.Import(requestContext(c), body)
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusCreated, blog)
}

// PUT /api/admin/blogs/:id
func (h *AdminBlogHandler) Update(c *gin.Context) {
	var req blogRequest
	if !bindAndValidate(c, &req) {
		return
	}

	blog, err := h.blogs.Update(requestContext(c), c.Param("id"), req.input())
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusOK, blog)
}

// DELETE /api/admin/blogs/:id
func (h *AdminBlogHandler) Delete(c *gin.Context) {
	if err := h.blogs.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/admin/blogs/backfill-slugs
func (h *AdminBlogHandler) BackfillSlugs(c *gin.Context) {
	result, err := h.blogs.BackfillSlugs(requestContext(c))
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusOK, result)
}
