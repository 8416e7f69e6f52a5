package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ichwanardi/portfolio/internal/services"
	"github.com/ichwanardi/portfolio/pkg/response"
)

// AdminProjectHandler exposes project management for the admin console.
type AdminProjectHandler struct {
	projects *services.ProjectService
}

// NewAdminProjectHandler wires the admin project handler.
func NewAdminProjectHandler(projects *services.ProjectService) *AdminProjectHandler {
	return &AdminProjectHandler{projects: projects}
}

type projectRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Slug         string     `json:"slug" validate:"omitempty,slug,max=200"`
	Category     string     `json:"category" validate:"max=100"`
	Description  string     `json:"description" validate:"required,max=1000"`
	Content      string     `json:"content"`
	Images       []string   `json:"images" validate:"max=20,dive,weburl"`
	Technologies []string   `json:"technologies" validate:"max=30,dive,max=50"`
	GithubURL    string     `json:"githubUrl" validate:"weburl,max=500"`
	DemoURL      string     `json:"demoUrl" validate:"weburl,max=500"`
	Featured     bool       `json:"featured"`
	Date         *time.Time `json:"date"`
}

func (r projectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		Title:        r.Title,
		Slug:         r.Slug,
		Category:     r.Category,
		Description:  r.Description,
		Content:      r.Content,
		Images:       r.Images,
		Technologies: r.Technologies,
		GithubURL:    r.GithubURL,
		DemoURL:      r.DemoURL,
		Featured:     r.Featured,
		Date:         r.Date,
	}
}

// GET /api/admin/projects
func (h *AdminProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(requestContext(c))
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusOK, projects)
}

// POST /api/admin/projects
func (h *AdminProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Create(requestContext(c), req.input())
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusCreated, project)
}

// PUT /api/admin/projects/:id
func (h *AdminProjectHandler) Update(c *gin.Context) {
	var req projectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Update(requestContext(c), c.Param("id"), req.input())
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusOK, project)
}

// DELETE /api/admin/projects/:id
func (h *AdminProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
