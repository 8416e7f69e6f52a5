package services

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/database"
	"github.com/ichwanardi/portfolio/internal/models"
)

func newBlogService(t *testing.T, env *testEnv) *BlogService {
	t.Helper()
	svc, err := NewBlogService(env.db, env.accessor, env.cfg)
	require.NoError(t, err)
	return svc
}

func TestNewBlogServiceRequiresDB(t *testing.T) {
	_, err := NewBlogService(nil, nil, Config{})
	require.EqualError(t, err, "blog service: db is required")
}

func TestNormalisePage(t *testing.T) {
	page, limit := NormalisePage(0, 0)
	require.Equal(t, 1, page)
	require.Equal(t, 10, limit)

	page, limit = NormalisePage(3, 500)
	require.Equal(t, 3, page)
	require.Equal(t, 50, limit)
}

func TestBlogListPaginatesAndCaches(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)
	ctx := context.Background()

	env.seedBlog(t, models.Blog{Title: "Oldest", Content: "body", Date: daysAgo(3)})
	env.seedBlog(t, models.Blog{Title: "Middle", Slug: "middle", Date: daysAgo(2)})
	newest := env.seedBlog(t, models.Blog{Title: "Newest", Date: daysAgo(1)})

	list, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, list.Total)
	require.Equal(t, 1, list.Page)
	require.Equal(t, 2, list.Limit)
	require.Len(t, list.Data, 2)
	require.Equal(t, "Newest", list.Data[0].Title)
	require.Equal(t, "newest", list.Data[0].Slug)
	require.Equal(t, "middle", list.Data[1].Slug)
	require.True(t, env.cached(t, "blogs:page:1:limit:2"))

	page2, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2.Data, 1)
	require.Equal(t, "Oldest", page2.Data[0].Title)

	// Served from cache until the entry expires.
	require.NoError(t, env.db.Delete(&models.Blog{}, "id = ?", newest.ID).Error)
	again, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, again.Total)
	require.Equal(t, newest.ID, again.Data[0].ID)
}

func TestBlogListSlugs(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)

	env.seedBlog(t, models.Blog{Title: "Legacy Post", Date: daysAgo(2)})
	env.seedBlog(t, models.Blog{Title: "Stored", Slug: "custom", Category: "go", Date: daysAgo(1)})

	slugs, err := svc.ListSlugs(context.Background())
	require.NoError(t, err)
	require.Len(t, slugs, 2)
	require.Equal(t, "custom", slugs[0].Slug)
	require.Equal(t, "legacy-post", slugs[1].Slug)
	require.True(t, env.cached(t, cache.BlogSlugsKey))
}

func TestBlogGetBySlugTiers(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)
	ctx := context.Background()

	stored := env.seedBlog(t, models.Blog{Title: "Custom Slug Post", Slug: "custom-slug", Category: "go", Content: "hi", Date: daysAgo(1)})
	legacy := env.seedBlog(t, models.Blog{Title: "My First Post", Category: "go", Content: "legacy body", Date: daysAgo(5)})
	exotic := env.seedBlog(t, models.Blog{Title: "C++ Tricks", Date: daysAgo(6)})

	detail, err := svc.GetBySlug(ctx, "custom-slug")
	require.NoError(t, err)
	require.Equal(t, stored.ID, detail.MainBlog.ID)
	require.Equal(t, "custom-slug", detail.MainBlog.Slug)
	require.Len(t, detail.RelatedBlogs, 1)
	require.Equal(t, legacy.ID, detail.RelatedBlogs[0].ID)

	detail, err = svc.GetBySlug(ctx, "my-first-post")
	require.NoError(t, err)
	require.Equal(t, legacy.ID, detail.MainBlog.ID)
	require.Equal(t, "my-first-post", detail.MainBlog.Slug)
	require.Equal(t, "legacy body", detail.MainBlog.Content)
	require.True(t, env.cached(t, "blog:my-first-post"))

	// The annotation is never written back.
	var row models.Blog
	require.NoError(t, env.db.Take(&row, "id = ?", legacy.ID).Error)
	require.Empty(t, row.Slug)

	detail, err = svc.GetBySlug(ctx, "c++-tricks")
	require.NoError(t, err)
	require.Equal(t, exotic.ID, detail.MainBlog.ID)
	require.Equal(t, "c-tricks", detail.MainBlog.Slug)
	require.Empty(t, detail.RelatedBlogs)
}

func TestBlogGetBySlugUnicodeWhitespaceTitle(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)

	legacy := env.seedBlog(t, models.Blog{Title: "Hello\u00a0World", Content: "nbsp", Date: daysAgo(1)})

	detail, err := svc.GetBySlug(context.Background(), "hello-world")
	require.NoError(t, err)
	require.Equal(t, legacy.ID, detail.MainBlog.ID)
	require.Equal(t, "hello-world", detail.MainBlog.Slug)
}

func TestBlogGetBySlugConcurrentColdReads(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)
	env.seedBlog(t, models.Blog{Title: "Shared Post", Slug: "shared-post", Content: "body", Date: daysAgo(1)})

	var (
		queries atomic.Int32
		arrived = make(chan struct{}, 2)
		release = make(chan struct{})
	)
	// Hold the first query of each load until both requests have missed the cache.
	require.NoError(t, env.db.Callback().Query().Before("gorm:query").Register("test:gate", func(tx *gorm.DB) {
		if tx.Statement.Table != "blogs" {
			return
		}
		if queries.Add(1) <= 2 {
			arrived <- struct{}{}
			<-release
		}
	}))

	bodies := make([][]byte, 2)
	errs := make([]error, 2)
	var done sync.WaitGroup
	for i := 0; i < 2; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			detail, err := svc.GetBySlug(context.Background(), "shared-post")
			if err != nil {
				errs[i] = err
				return
			}
			bodies[i], errs[i] = json.Marshal(detail)
		}(i)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-arrived:
		case <-time.After(5 * time.Second):
			close(release)
			t.Fatal("second cold read never reached the database")
		}
	}
	close(release)
	done.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.JSONEq(t, string(bodies[0]), string(bodies[1]))
	require.True(t, env.cached(t, cache.BlogSlugKey("shared-post")))

	issued := queries.Load()
	_, err := svc.GetBySlug(context.Background(), "shared-post")
	require.NoError(t, err)
	require.Equal(t, issued, queries.Load())
}

func TestBlogGetBySlugNotFoundIsNotCached(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)

	_, err := svc.GetBySlug(context.Background(), "nope")
	require.ErrorIs(t, err, ErrBlogNotFound)
	require.False(t, env.cached(t, "blog:nope"))
}

func TestBlogGetByID(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)
	blog := env.seedBlog(t, models.Blog{Title: "By Id", Date: daysAgo(1)})

	detail, err := svc.GetByID(context.Background(), blog.ID)
	require.NoError(t, err)
	require.Equal(t, "by-id", detail.MainBlog.Slug)
	require.True(t, env.cached(t, "blog:id:"+blog.ID))

	_, err = svc.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrBlogNotFound)
}

func TestBlogBackingStoreFailureIsLoggedAndReturned(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)
	require.NoError(t, database.Close(env.db))

	_, err := svc.GetBySlug(context.Background(), "anything")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrBlogNotFound)

	entries := env.logs.FilterMessage("backing store query failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, "blog", entries[0].ContextMap()["resource"])
	require.Equal(t, "blog:anything", entries[0].ContextMap()["key"])
}

func TestBlogCreateDerivesSlugAndRenders(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)
	ctx := context.Background()

	blog, err := svc.Create(ctx, BlogInput{
		Title:    "Hello, World!  Foo",
		Category: " go ",
		Content:  "# Heading\n\nSome **bold** words here.",
		Tags:     []string{"go", " go ", "", "cache"},
	})
	require.NoError(t, err)
	require.Equal(t, "hello-world-foo", blog.Slug)
	require.Equal(t, "go", blog.Category)
	require.Contains(t, blog.ContentHTML, "<strong>bold</strong>")
	require.Equal(t, "Heading Some bold words here.", blog.Excerpt)
	require.Equal(t, 1, blog.ReadingTime)
	require.Equal(t, []string{"go", "cache"}, []string(blog.Tags))
	require.True(t, blog.Date.Equal(testNow))

	_, err = svc.Create(ctx, BlogInput{Title: "Hello World Foo"})
	require.ErrorIs(t, err, ErrSlugConflict)

	_, err = svc.Create(ctx, BlogInput{Title: "   "})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, BlogInput{Title: "!!!"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestBlogWritesInvalidateCachedReads(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)
	ctx := context.Background()

	blog, err := svc.Create(ctx, BlogInput{Title: "Original Title", Content: "v1"})
	require.NoError(t, err)

	_, err = svc.GetBySlug(ctx, "original-title")
	require.NoError(t, err)
	_, err = svc.GetByID(ctx, blog.ID)
	require.NoError(t, err)
	_, err = svc.ListSlugs(ctx)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, blog.ID, BlogInput{Title: "Renamed Title", Slug: "renamed-title", Content: "v2"})
	require.NoError(t, err)
	require.Equal(t, "renamed-title", updated.Slug)
	require.True(t, updated.Date.Equal(blog.Date))

	require.False(t, env.cached(t, "blog:original-title"))
	require.False(t, env.cached(t, "blog:id:"+blog.ID))
	require.False(t, env.cached(t, cache.BlogSlugsKey))

	detail, err := svc.GetByID(ctx, blog.ID)
	require.NoError(t, err)
	require.Equal(t, "v2", detail.MainBlog.Content)

	require.NoError(t, svc.Delete(ctx, blog.ID))
	require.False(t, env.cached(t, "blog:id:"+blog.ID))
	_, err = svc.GetBySlug(ctx, "renamed-title")
	require.ErrorIs(t, err, ErrBlogNotFound)

	require.ErrorIs(t, svc.Delete(ctx, blog.ID), ErrBlogNotFound)
	_, err = svc.Update(ctx, blog.ID, BlogInput{Title: "x"})
	require.ErrorIs(t, err, ErrBlogNotFound)
}

func TestBlogUpdateKeepsPublishedSlug(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)
	ctx := context.Background()

	blog, err := svc.Create(ctx, BlogInput{Title: "Launch Notes", Slug: "custom-slug", Content: "v1"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, blog.ID, BlogInput{Title: "Launch Notes", Content: "v2"})
	require.NoError(t, err)
	require.Equal(t, "custom-slug", updated.Slug)

	detail, err := svc.GetBySlug(ctx, "custom-slug")
	require.NoError(t, err)
	require.Equal(t, "v2", detail.MainBlog.Content)

	// Rows without a stored slug keep the one their original title produced.
	legacy := env.seedBlog(t, models.Blog{Title: "My First Post", Content: "v1", Date: daysAgo(3)})
	updated, err = svc.Update(ctx, legacy.ID, BlogInput{Title: "My First Post, Revisited", Content: "v2"})
	require.NoError(t, err)
	require.Equal(t, "my-first-post", updated.Slug)

	_, err = svc.GetBySlug(ctx, "my-first-post")
	require.NoError(t, err)
}

func TestBlogWritesKeepCacheWhenInvalidationDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.InvalidateOnWrite = false
	svc := newBlogService(t, env)
	ctx := context.Background()

	blog, err := svc.Create(ctx, BlogInput{Title: "Sticky", Content: "v1"})
	require.NoError(t, err)
	_, err = svc.GetByID(ctx, blog.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, blog.ID, BlogInput{Title: "Sticky", Content: "v2"})
	require.NoError(t, err)

	detail, err := svc.GetByID(ctx, blog.ID)
	require.NoError(t, err)
	require.Equal(t, "v1", detail.MainBlog.Content)
}

func TestBlogBackfillSlugs(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)
	ctx := context.Background()

	newer := env.seedBlog(t, models.Blog{Title: "Hello World", Date: daysAgo(1)})
	older := env.seedBlog(t, models.Blog{Title: "Hello, World!", Date: daysAgo(2)})
	env.seedBlog(t, models.Blog{Title: "Owned", Slug: "owned", Date: daysAgo(3)})
	clash := env.seedBlog(t, models.Blog{Title: "Owned", Date: daysAgo(4)})

	result, err := svc.BackfillSlugs(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.Updated)
	require.ElementsMatch(t, []string{older.ID, clash.ID}, result.Skipped)

	var row models.Blog
	require.NoError(t, env.db.Take(&row, "id = ?", newer.ID).Error)
	require.Equal(t, "hello-world", row.Slug)

	again, err := svc.BackfillSlugs(ctx)
	require.NoError(t, err)
	require.Zero(t, again.Updated)
}

func TestBlogImport(t *testing.T) {
	env := newTestEnv(t)
	svc := newBlogService(t, env)
	src := "---\ntitle: Imported Post\ncategory: notes\ntags: [a, b]\ndate: 2023-12-24\n---\n\nImported body.\n"

	blog, err := svc.Import(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Equal(t, "imported-post", blog.Slug)
	require.Equal(t, "notes", blog.Category)
	require.Equal(t, "Imported body.\n", blog.Content)
	require.Equal(t, 2023, blog.Date.Year())
	require.Equal(t, []string{"a", "b"}, []string(blog.Tags))

	_, err = svc.Import(context.Background(), []byte("no front matter"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStripFrontMatter(t *testing.T) {
	require.Equal(t, "body\n", stripFrontMatter("---\ntitle: x\n---\nbody\n"))
	require.Equal(t, "plain", stripFrontMatter("plain"))
	require.Equal(t, "---\nunterminated", stripFrontMatter("---\nunterminated"))
}
