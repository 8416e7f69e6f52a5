package services

import "errors"

var (
	// ErrBlogNotFound indicates no blog matches the requested slug or id.
	ErrBlogNotFound = errors.New("blog service: blog not found")
	// ErrProjectNotFound indicates no visible project matches the requested id or slug.
	ErrProjectNotFound = errors.New("project service: project not found")
	// ErrUpdateNotFound indicates the update does not exist.
	ErrUpdateNotFound = errors.New("update service: update not found")
	// ErrInvalidInput wraps rejected write payloads.
	ErrInvalidInput = errors.New("services: invalid input")
	// ErrSlugConflict is returned when a write would store a slug another record already owns.
	ErrSlugConflict = errors.New("services: slug already in use")
)
