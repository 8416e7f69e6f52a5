package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/models"
	"github.com/ichwanardi/portfolio/internal/slug"
)

// Home is the landing page aggregate. Each field is null when its table is empty.
type Home struct {
	LatestProject *models.Project `json:"latestProject"`
	LatestBlog    *BlogSummary    `json:"latestBlog"`
	LatestUpdate  *models.Update  `json:"latestUpdate"`
}

// HomeService builds the home aggregate.
type HomeService struct {
	base
}

// NewHomeService constructs a HomeService.
func NewHomeService(db *gorm.DB, accessor *cache.Accessor, cfg Config) (*HomeService, error) {
	b, err := newBase("home service", db, accessor, cfg)
	if err != nil {
		return nil, err
	}
	return &HomeService{base: b}, nil
}

// Aggregate returns the newest visible project, blog and update.
func (s *HomeService) Aggregate(ctx context.Context) (Home, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.HomeKey, cache.HomeTTL, func(ctx context.Context) (Home, error) {
		db, cancel := s.query(ctx)
		defer cancel()

		var home Home

		var projects []models.Project
		if err := visible(db).Omit("content").Order("date DESC").Limit(1).Find(&projects).Error; err != nil {
			return Home{}, s.storeFailure("projects", cache.HomeKey, err)
		}
		if len(projects) > 0 {
			project := projects[0]
			project.Slug = slug.Effective(project.Title, project.Slug)
			home.LatestProject = &project
		}

		var blogs []models.Blog
		if err := db.Select(blogSummaryColumns).Order("date DESC").Limit(1).Find(&blogs).Error; err != nil {
			return Home{}, s.storeFailure("blogs", cache.HomeKey, err)
		}
		if len(blogs) > 0 {
			latest := summary(blogs[0])
			home.LatestBlog = &latest
		}

		var updates []models.Update
		if err := db.Order("date DESC").Limit(1).Find(&updates).Error; err != nil {
			return Home{}, s.storeFailure("updates", cache.HomeKey, err)
		}
		if len(updates) > 0 {
			home.LatestUpdate = &updates[0]
		}

		return home, nil
	})
}
