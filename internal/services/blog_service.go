package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/markdown"
	"github.com/ichwanardi/portfolio/internal/models"
	"github.com/ichwanardi/portfolio/internal/slug"
)

const (
	DefaultBlogPage  = 1
	DefaultBlogLimit = 10
	MaxBlogLimit     = 50
	relatedBlogLimit = 3
)

// Columns read for list views; bodies stay out of list payloads.
var blogSummaryColumns = []string{
	"id", "created_at", "updated_at", "title", "slug", "category",
	"excerpt", "cover_image", "tags", "reading_time", "date",
}

// BlogSummary is the list projection of a blog.
type BlogSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Category    string    `json:"category"`
	Excerpt     string    `json:"excerpt"`
	CoverImage  string    `json:"coverImage"`
	Tags        []string  `json:"tags"`
	ReadingTime int       `json:"readingTime"`
	Date        time.Time `json:"date"`
}

// BlogList is one page of the public listing.
type BlogList struct {
	Data  []BlogSummary `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// BlogSlug is one entry of the slug index used for sitemaps and static paths.
type BlogSlug struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
}

// BlogDetail wraps a full blog with its slug annotated.
type BlogDetail struct {
	MainBlog     models.Blog   `json:"mainBlog"`
	RelatedBlogs []BlogSummary `json:"relatedBlogs"`
}

// BlogInput is the writable shape of a blog.
type BlogInput struct {
	Title      string
	Slug       string
	Category   string
	Excerpt    string
	Content    string
	CoverImage string
	Tags       []string
	Date       *time.Time
}

// BackfillResult reports a slug backfill run.
type BackfillResult struct {
	Updated int      `json:"updated"`
	Skipped []string `json:"skipped"`
}

// BlogService serves blog reads through the cache and applies admin writes.
type BlogService struct {
	base
	resolver *slug.Resolver[models.Blog]
}

// NewBlogService constructs a BlogService.
func NewBlogService(db *gorm.DB, accessor *cache.Accessor, cfg Config) (*BlogService, error) {
	b, err := newBase("blog service", db, accessor, cfg)
	if err != nil {
		return nil, err
	}
	svc := &BlogService{base: b}
	svc.resolver = slug.NewResolver[models.Blog](blogSource{svc})
	return svc, nil
}

// NormalisePage clamps pagination to the supported range.
func NormalisePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultBlogPage
	}
	if limit < 1 {
		limit = DefaultBlogLimit
	}
	if limit > MaxBlogLimit {
		limit = MaxBlogLimit
	}
	return page, limit
}

// List returns one page of blogs, newest first.
func (s *BlogService) List(ctx context.Context, page, limit int) (BlogList, error) {
	page, limit = NormalisePage(page, limit)
	key := cache.BlogListKey(page, limit)

	return cache.GetOrLoad(ctx, s.cache, key, cache.BlogListTTL, func(ctx context.Context) (BlogList, error) {
		db, cancel := s.query(ctx)
		defer cancel()

		var total int64
		if err := db.Model(&models.Blog{}).Count(&total).Error; err != nil {
			return BlogList{}, s.storeFailure("blogs", key, err)
		}

		var rows []models.Blog
		err := db.Select(blogSummaryColumns).
			Order("date DESC").Order("id").
			Offset((page - 1) * limit).Limit(limit).
			Find(&rows).Error
		if err != nil {
			return BlogList{}, s.storeFailure("blogs", key, err)
		}

		return BlogList{Data: summarise(rows), Total: total, Page: page, Limit: limit}, nil
	})
}

// ListSlugs returns every blog with its effective slug.
func (s *BlogService) ListSlugs(ctx context.Context) ([]BlogSlug, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.BlogSlugsKey, cache.BlogSlugsTTL, func(ctx context.Context) ([]BlogSlug, error) {
		db, cancel := s.query(ctx)
		defer cancel()

		var rows []models.Blog
		if err := db.Select("id", "title", "slug", "category", "date").Order("date DESC").Find(&rows).Error; err != nil {
			return nil, s.storeFailure("blogs", cache.BlogSlugsKey, err)
		}

		out := make([]BlogSlug, 0, len(rows))
		for _, row := range rows {
			out = append(out, BlogSlug{
				ID:       row.ID,
				Title:    row.Title,
				Slug:     slug.Effective(row.Title, row.Slug),
				Category: row.Category,
				Date:     row.Date,
			})
		}
		return out, nil
	})
}

// GetBySlug resolves identifier through the slug tiers and returns the blog
// with related posts from the same category.
func (s *BlogService) GetBySlug(ctx context.Context, identifier string) (BlogDetail, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return BlogDetail{}, ErrBlogNotFound
	}
	key := cache.BlogSlugKey(identifier)

	return cache.GetOrLoad(ctx, s.cache, key, cache.BlogSlugTTL, func(ctx context.Context) (BlogDetail, error) {
		match, err := s.resolver.Resolve(ctx, identifier)
		if errors.Is(err, slug.ErrNotFound) {
			return BlogDetail{}, ErrBlogNotFound
		}
		if err != nil {
			return BlogDetail{}, s.storeFailure("blog", key, err)
		}

		blog := match.Record
		if match.Tier != slug.TierStored {
			if blog, err = s.loadFull(ctx, blog.ID, key); err != nil {
				return BlogDetail{}, err
			}
		}
		blog.Slug = match.Slug
		return s.detail(ctx, blog, key)
	})
}

// GetByID returns a blog by primary key.
func (s *BlogService) GetByID(ctx context.Context, id string) (BlogDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return BlogDetail{}, ErrBlogNotFound
	}
	key := cache.BlogIDKey(id)

	return cache.GetOrLoad(ctx, s.cache, key, cache.BlogIDTTL, func(ctx context.Context) (BlogDetail, error) {
		blog, err := s.loadFull(ctx, id, key)
		if err != nil {
			return BlogDetail{}, err
		}
		blog.Slug = slug.Effective(blog.Title, blog.Slug)
		return s.detail(ctx, blog, key)
	})
}

// ListAll returns every blog summary for the admin console, uncached.
func (s *BlogService) ListAll(ctx context.Context) ([]BlogSummary, error) {
	db, cancel := s.query(ctx)
	defer cancel()

	var rows []models.Blog
	if err := db.Select(blogSummaryColumns).Order("date DESC").Find(&rows).Error; err != nil {
		return nil, s.storeFailure("blogs", "admin", err)
	}
	return summarise(rows), nil
}

// Create stores a new blog, deriving its slug from the title when none is given.
func (s *BlogService) Create(ctx context.Context, input BlogInput) (*models.Blog, error) {
	blog := &models.Blog{}
	if err := s.apply(blog, input); err != nil {
		return nil, err
	}

	db, cancel := s.query(ctx)
	defer cancel()

	if err := s.ensureSlugFree(db, blog.Slug, ""); err != nil {
		return nil, err
	}
	if err := db.Create(blog).Error; err != nil {
		return nil, s.storeFailure("blog", blog.Slug, err)
	}

	s.evictBlog(ctx, blog.ID, blog.Slug)
	return blog, nil
}

// Import creates a blog from a Markdown document with a YAML front matter header.
func (s *BlogService) Import(ctx context.Context, source []byte) (*models.Blog, error) {
	doc, err := markdown.Parse(source)
	if err != nil {
		return nil, invalidInput("%v", err)
	}
	fm := doc.Meta
	if fm.Title == "" {
		return nil, invalidInput("front matter title is required")
	}

	input := BlogInput{
		Title:      fm.Title,
		Slug:       fm.Slug,
		Category:   fm.Category,
		Excerpt:    fm.Excerpt,
		Content:    stripFrontMatter(string(source)),
		CoverImage: fm.CoverImage,
		Tags:       fm.Tags,
	}
	if !fm.Date.IsZero() {
		date := fm.Date
		input.Date = &date
	}
	return s.Create(ctx, input)
}

// Update replaces the writable fields of a blog.
func (s *BlogService) Update(ctx context.Context, id string, input BlogInput) (*models.Blog, error) {
	db, cancel := s.query(ctx)
	defer cancel()

	var blog models.Blog
	if err := db.Take(&blog, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrBlogNotFound
		}
		return nil, s.storeFailure("blog", id, err)
	}
	oldSlug := slug.Effective(blog.Title, blog.Slug)

	if err := s.apply(&blog, input); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(db, blog.Slug, blog.ID); err != nil {
		return nil, err
	}
	if err := db.Save(&blog).Error; err != nil {
		return nil, s.storeFailure("blog", id, err)
	}

	s.evictBlog(ctx, blog.ID, oldSlug, blog.Slug)
	return &blog, nil
}

// Delete removes a blog permanently.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	db, cancel := s.query(ctx)
	defer cancel()

	var blog models.Blog
	if err := db.Select("id", "title", "slug").Take(&blog, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return ErrBlogNotFound
		}
		return s.storeFailure("blog", id, err)
	}
	if err := db.Delete(&models.Blog{}, "id = ?", id).Error; err != nil {
		return s.storeFailure("blog", id, err)
	}

	s.evictBlog(ctx, id, slug.Effective(blog.Title, blog.Slug))
	return nil
}

// BackfillSlugs stores the derived slug on every blog that lacks one. Newer
// posts win a collision; losers are listed in Skipped and keep resolving
// through the fallback tiers.
func (s *BlogService) BackfillSlugs(ctx context.Context) (BackfillResult, error) {
	db, cancel := s.query(ctx)
	defer cancel()

	var rows []models.Blog
	if err := db.Select("id", "title", "slug").Order("date DESC").Find(&rows).Error; err != nil {
		return BackfillResult{}, s.storeFailure("blogs", "backfill", err)
	}

	taken := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.Slug != "" {
			taken[row.Slug] = struct{}{}
		}
	}

	result := BackfillResult{Skipped: []string{}}
	var touched []string
	for _, row := range rows {
		if row.Slug != "" {
			continue
		}
		derived := slug.Derive(row.Title)
		if _, clash := taken[derived]; clash || derived == "" {
			result.Skipped = append(result.Skipped, row.ID)
			continue
		}
		if err := db.Model(&models.Blog{}).Where("id = ?", row.ID).Update("slug", derived).Error; err != nil {
			return result, s.storeFailure("blog", row.ID, err)
		}
		taken[derived] = struct{}{}
		result.Updated++
		touched = append(touched, cache.BlogSlugKey(derived), cache.BlogIDKey(row.ID))
	}

	if result.Updated > 0 {
		s.evict(ctx, append(touched, cache.BlogSlugsKey, cache.HomeKey)...)
	}
	return result, nil
}

func (s *BlogService) apply(blog *models.Blog, input BlogInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return invalidInput("title is required")
	}

	// A blank slug keeps the one already published. New records have none.
	stored := strings.TrimSpace(input.Slug)
	if stored == "" {
		stored = slug.Effective(blog.Title, blog.Slug)
	}
	if stored == "" {
		stored = slug.Derive(title)
	}
	if stored == "" {
		return invalidInput("title %q does not produce a slug; provide one", title)
	}

	doc, err := markdown.Parse([]byte(input.Content))
	if err != nil {
		return invalidInput("%v", err)
	}

	excerpt := strings.TrimSpace(input.Excerpt)
	if excerpt == "" {
		excerpt = markdown.Excerpt(doc.Plain, markdown.DefaultExcerptLength)
	}

	date := s.now()
	if input.Date != nil && !input.Date.IsZero() {
		date = input.Date.UTC()
	} else if !blog.Date.IsZero() {
		date = blog.Date
	}

	blog.Title = title
	blog.Slug = stored
	blog.Category = strings.TrimSpace(input.Category)
	blog.Excerpt = excerpt
	blog.Content = input.Content
	blog.ContentHTML = doc.HTML
	blog.CoverImage = strings.TrimSpace(input.CoverImage)
	blog.Tags = datatypes.JSONSlice[string](normaliseStrings(input.Tags))
	blog.ReadingTime = doc.ReadingTime
	blog.Date = date
	return nil
}

func (s *BlogService) ensureSlugFree(db *gorm.DB, value, selfID string) error {
	q := db.Model(&models.Blog{}).Where("slug = ?", value)
	if selfID != "" {
		q = q.Where("id <> ?", selfID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return s.storeFailure("blog", value, err)
	}
	if count > 0 {
		return ErrSlugConflict
	}
	return nil
}

func (s *BlogService) evictBlog(ctx context.Context, id string, slugs ...string) {
	keys := []string{cache.BlogIDKey(id), cache.BlogSlugsKey, cache.HomeKey}
	for _, value := range slugs {
		keys = append(keys, cache.BlogSlugKey(value))
	}
	s.evict(ctx, keys...)
}

func (s *BlogService) loadFull(ctx context.Context, id, key string) (models.Blog, error) {
	db, cancel := s.query(ctx)
	defer cancel()

	var blog models.Blog
	if err := db.Take(&blog, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return models.Blog{}, ErrBlogNotFound
		}
		return models.Blog{}, s.storeFailure("blog", key, err)
	}
	return blog, nil
}

func (s *BlogService) detail(ctx context.Context, blog models.Blog, key string) (BlogDetail, error) {
	related := []BlogSummary{}
	if blog.Category != "" {
		db, cancel := s.query(ctx)
		defer cancel()

		var rows []models.Blog
		err := db.Select(blogSummaryColumns).
			Where("category = ? AND id <> ?", blog.Category, blog.ID).
			Order("date DESC").Limit(relatedBlogLimit).
			Find(&rows).Error
		if err != nil {
			return BlogDetail{}, s.storeFailure("blog", key, err)
		}
		related = summarise(rows)
	}
	return BlogDetail{MainBlog: blog, RelatedBlogs: related}, nil
}

// blogSource adapts the blogs table to the slug resolver.
type blogSource struct {
	svc *BlogService
}

func (src blogSource) FindBySlug(ctx context.Context, value string) (*models.Blog, error) {
	db, cancel := src.svc.query(ctx)
	defer cancel()

	var rows []models.Blog
	if err := db.Where("slug = ?", value).Order("date DESC").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ListCandidates reads only what the fallback tiers compare; the match is
// reloaded in full afterwards.
func (src blogSource) ListCandidates(ctx context.Context) ([]models.Blog, error) {
	db, cancel := src.svc.query(ctx)
	defer cancel()

	var rows []models.Blog
	err := db.Select("id", "title", "slug", "date").Order("date DESC").Find(&rows).Error
	return rows, err
}

func summarise(rows []models.Blog) []BlogSummary {
	out := make([]BlogSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, summary(row))
	}
	return out
}

func summary(row models.Blog) BlogSummary {
	tags := []string(row.Tags)
	if tags == nil {
		tags = []string{}
	}
	return BlogSummary{
		ID:          row.ID,
		Title:       row.Title,
		Slug:        slug.Effective(row.Title, row.Slug),
		Category:    row.Category,
		Excerpt:     row.Excerpt,
		CoverImage:  row.CoverImage,
		Tags:        tags,
		ReadingTime: row.ReadingTime,
		Date:        row.Date,
	}
}

func stripFrontMatter(source string) string {
	trimmed := strings.TrimPrefix(source, "\ufeff")
	if !strings.HasPrefix(trimmed, "---") {
		return source
	}
	rest := strings.TrimPrefix(trimmed, "---")
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return source
	}
	body := rest[idx+len("\n---"):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	return strings.TrimLeft(body, "\n")
}
