package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/models"
	"github.com/ichwanardi/portfolio/internal/slug"
)

// ProjectInput is the writable shape of a project.
type ProjectInput struct {
	Title        string
	Slug         string
	Category     string
	Description  string
	Content      string
	Images       []string
	Technologies []string
	GithubURL    string
	DemoURL      string
	Featured     bool
	Date         *time.Time
}

// ProjectService serves project reads and admin writes. Deleted projects are
// invisible to every read.
type ProjectService struct {
	base
	resolver *slug.Resolver[models.Project]
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB, accessor *cache.Accessor, cfg Config) (*ProjectService, error) {
	b, err := newBase("project service", db, accessor, cfg)
	if err != nil {
		return nil, err
	}
	svc := &ProjectService{base: b}
	svc.resolver = slug.NewResolver[models.Project](projectSource{svc})
	return svc, nil
}

func visible(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// List returns visible projects, featured first then newest.
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	db, cancel := s.query(ctx)
	defer cancel()

	var rows []models.Project
	err := visible(db).Omit("content").Order("featured DESC").Order("date DESC").Find(&rows).Error
	if err != nil {
		return nil, s.storeFailure("projects", "list", err)
	}
	for i := range rows {
		rows[i].Slug = slug.Effective(rows[i].Title, rows[i].Slug)
	}
	return rows, nil
}

// Get returns a visible project by id, falling back to slug resolution.
func (s *ProjectService) Get(ctx context.Context, identifier string) (models.Project, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return models.Project{}, ErrProjectNotFound
	}
	key := cache.ProjectKey(identifier)

	return cache.GetOrLoad(ctx, s.cache, key, cache.ProjectTTL, func(ctx context.Context) (models.Project, error) {
		project, err := s.byID(ctx, identifier)
		if err == nil {
			project.Slug = slug.Effective(project.Title, project.Slug)
			return project, nil
		}
		if !errors.Is(err, ErrProjectNotFound) {
			return models.Project{}, s.storeFailure("project", key, err)
		}

		match, err := s.resolver.Resolve(ctx, identifier)
		if errors.Is(err, slug.ErrNotFound) {
			return models.Project{}, ErrProjectNotFound
		}
		if err != nil {
			return models.Project{}, s.storeFailure("project", key, err)
		}

		project = match.Record
		if match.Tier != slug.TierStored {
			if project, err = s.byID(ctx, project.ID); err != nil {
				if errors.Is(err, ErrProjectNotFound) {
					return models.Project{}, err
				}
				return models.Project{}, s.storeFailure("project", key, err)
			}
		}
		project.Slug = match.Slug
		return project, nil
	})
}

// Create stores a new project.
func (s *ProjectService) Create(ctx context.Context, input ProjectInput) (*models.Project, error) {
	project := &models.Project{}
	if err := s.apply(project, input); err != nil {
		return nil, err
	}

	db, cancel := s.query(ctx)
	defer cancel()

	if err := s.ensureSlugFree(db, project.Slug, ""); err != nil {
		return nil, err
	}
	if err := db.Create(project).Error; err != nil {
		return nil, s.storeFailure("project", project.Slug, err)
	}

	s.evictProject(ctx, project.ID, project.Slug)
	return project, nil
}

// Update replaces the writable fields of a visible project.
func (s *ProjectService) Update(ctx context.Context, id string, input ProjectInput) (*models.Project, error) {
	project, err := s.byID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, err
		}
		return nil, s.storeFailure("project", id, err)
	}
	oldSlug := slug.Effective(project.Title, project.Slug)

	if err := s.apply(&project, input); err != nil {
		return nil, err
	}

	db, cancel := s.query(ctx)
	defer cancel()

	if err := s.ensureSlugFree(db, project.Slug, project.ID); err != nil {
		return nil, err
	}
	if err := db.Save(&project).Error; err != nil {
		return nil, s.storeFailure("project", id, err)
	}

	s.evictProject(ctx, project.ID, oldSlug, project.Slug)
	return &project, nil
}

// Delete hides a project. The row is kept.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	project, err := s.byID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return err
		}
		return s.storeFailure("project", id, err)
	}

	db, cancel := s.query(ctx)
	defer cancel()

	if err := db.Model(&models.Project{}).Where("id = ?", id).Update("is_deleted", true).Error; err != nil {
		return s.storeFailure("project", id, err)
	}

	s.evictProject(ctx, id, slug.Effective(project.Title, project.Slug))
	return nil
}

func (s *ProjectService) byID(ctx context.Context, id string) (models.Project, error) {
	db, cancel := s.query(ctx)
	defer cancel()

	var project models.Project
	if err := visible(db).Take(&project, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return models.Project{}, ErrProjectNotFound
		}
		return models.Project{}, err
	}
	return project, nil
}

func (s *ProjectService) apply(project *models.Project, input ProjectInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return invalidInput("title is required")
	}
	// A blank slug keeps the one already published. New records have none.
	stored := strings.TrimSpace(input.Slug)
	if stored == "" {
		stored = slug.Effective(project.Title, project.Slug)
	}
	if stored == "" {
		stored = slug.Derive(title)
	}
	if stored == "" {
		return invalidInput("title %q does not produce a slug; provide one", title)
	}

	date := s.now()
	if input.Date != nil && !input.Date.IsZero() {
		date = input.Date.UTC()
	} else if !project.Date.IsZero() {
		date = project.Date
	}

	project.Title = title
	project.Slug = stored
	project.Category = strings.TrimSpace(input.Category)
	project.Description = strings.TrimSpace(input.Description)
	project.Content = input.Content
	project.Images = datatypes.JSONSlice[string](normaliseStrings(input.Images))
	project.Technologies = datatypes.JSONSlice[string](normaliseStrings(input.Technologies))
	project.GithubURL = strings.TrimSpace(input.GithubURL)
	project.DemoURL = strings.TrimSpace(input.DemoURL)
	project.Featured = input.Featured
	project.Date = date
	return nil
}

func (s *ProjectService) ensureSlugFree(db *gorm.DB, value, selfID string) error {
	q := visible(db.Model(&models.Project{})).Where("slug = ?", value)
	if selfID != "" {
		q = q.Where("id <> ?", selfID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return s.storeFailure("project", value, err)
	}
	if count > 0 {
		return ErrSlugConflict
	}
	return nil
}

func (s *ProjectService) evictProject(ctx context.Context, id string, slugs ...string) {
	keys := []string{cache.ProjectKey(id), cache.HomeKey}
	for _, value := range slugs {
		keys = append(keys, cache.ProjectKey(value))
	}
	s.evict(ctx, keys...)
}

type projectSource struct {
	svc *ProjectService
}

func (src projectSource) FindBySlug(ctx context.Context, value string) (*models.Project, error) {
	db, cancel := src.svc.query(ctx)
	defer cancel()

	var rows []models.Project
	if err := visible(db).Where("slug = ?", value).Order("date DESC").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (src projectSource) ListCandidates(ctx context.Context) ([]models.Project, error) {
	db, cancel := src.svc.query(ctx)
	defer cancel()

	var rows []models.Project
	err := visible(db).Select("id", "title", "slug", "date").Order("date DESC").Find(&rows).Error
	return rows, err
}
