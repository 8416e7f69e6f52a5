package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/models"
)

const (
	DefaultUpdateLimit = 10
	MaxUpdateLimit     = 50
)

// UpdateInput is the writable shape of a news update.
type UpdateInput struct {
	Title    string
	Content  string
	Category string
	Link     string
	Date     *time.Time
}

// UpdateService manages the short news items shown on the home page.
type UpdateService struct {
	base
}

// NewUpdateService constructs an UpdateService.
func NewUpdateService(db *gorm.DB, accessor *cache.Accessor, cfg Config) (*UpdateService, error) {
	b, err := newBase("update service", db, accessor, cfg)
	if err != nil {
		return nil, err
	}
	return &UpdateService{base: b}, nil
}

// List returns the newest updates.
func (s *UpdateService) List(ctx context.Context, limit int) ([]models.Update, error) {
	if limit < 1 {
		limit = DefaultUpdateLimit
	}
	if limit > MaxUpdateLimit {
		limit = MaxUpdateLimit
	}

	db, cancel := s.query(ctx)
	defer cancel()

	var rows []models.Update
	if err := db.Order("date DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, s.storeFailure("updates", "list", err)
	}
	return rows, nil
}

// Create stores a new update.
func (s *UpdateService) Create(ctx context.Context, input UpdateInput) (*models.Update, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalidInput("title is required")
	}
	date := s.now()
	if input.Date != nil && !input.Date.IsZero() {
		date = input.Date.UTC()
	}

	update := &models.Update{
		Title:    title,
		Content:  strings.TrimSpace(input.Content),
		Category: strings.TrimSpace(input.Category),
		Link:     strings.TrimSpace(input.Link),
		Date:     date,
	}

	db, cancel := s.query(ctx)
	defer cancel()

	if err := db.Create(update).Error; err != nil {
		return nil, s.storeFailure("update", title, err)
	}
	s.evict(ctx, cache.HomeKey)
	return update, nil
}

// Delete removes an update.
func (s *UpdateService) Delete(ctx context.Context, id string) error {
	db, cancel := s.query(ctx)
	defer cancel()

	res := db.Delete(&models.Update{}, "id = ?", id)
	if res.Error != nil {
		return s.storeFailure("update", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUpdateNotFound
	}
	s.evict(ctx, cache.HomeKey)
	return nil
}
