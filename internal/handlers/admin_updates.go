package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ichwanardi/portfolio/internal/services"
	"github.com/ichwanardi/portfolio/pkg/response"
)

// AdminUpdateHandler manages the home page news items.
type AdminUpdateHandler struct {
	updates *services.UpdateService
}

// NewAdminUpdateHandler wires the admin update handler.
func NewAdminUpdateHandler(updates *services.UpdateService) *AdminUpdateHandler {
	return &AdminUpdateHandler{updates: updates}
}

type updateRequest struct {
	Title    string     `json:"title" validate:"required,max=200"`
	Content  string     `json:"content" validate:"max=2000"`
	Category string     `json:"category" validate:"max=100"`
	Link     string     `json:"link" validate:"weburl,max=500"`
	Date     *time.Time `json:"date"`
}

// POST /api/admin/updates
func (h *AdminUpdateHandler) Create(c *gin.Context) {
	var req updateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	update, err := h.updates.Create(requestContext(c), services.UpdateInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Link:     req.Link,
		Date:     req.Date,
	})
	if err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusCreated, update)
}

// DELETE /api/admin/updates/:id
func (h *AdminUpdateHandler) Delete(c *gin.Context) {
	if err := h.updates.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, translate(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
