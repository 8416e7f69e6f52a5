package handlers

import (
	"errors"
	"strings"

	"github.com/ichwanardi/portfolio/internal/services"
	"github.com/ichwanardi/portfolio/internal/slug"
	appErrors "github.com/ichwanardi/portfolio/pkg/errors"
)

// translate maps service errors onto API errors. Anything unrecognised becomes a
// generic 500; the service has already logged the detail.
func translate(err error) *appErrors.AppError {
	switch {
	case errors.Is(err, services.ErrBlogNotFound):
		return appErrors.NotFound("Blog")
	case errors.Is(err, services.ErrProjectNotFound):
		return appErrors.NotFound("Project")
	case errors.Is(err, services.ErrUpdateNotFound):
		return appErrors.NotFound("Update")
	case errors.Is(err, slug.ErrNotFound):
		return appErrors.ErrNotFound
	case errors.Is(err, services.ErrSlugConflict):
		return appErrors.ErrConflict.WithInternal(err)
	case errors.Is(err, services.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), services.ErrInvalidInput.Error()+": ")
		return appErrors.NewBadRequest(msg)
	default:
		return appErrors.ErrInternalServer.WithInternal(err)
	}
}
