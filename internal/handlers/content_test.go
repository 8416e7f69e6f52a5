package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/handlers/testutil"
	"github.com/ichwanardi/portfolio/internal/models"
	"github.com/ichwanardi/portfolio/internal/services"
)

func TestContentBlogBySlug(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/blogs/hello-world", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "public, s-maxage=60, stale-while-revalidate=300", w.Header().Get("Cache-Control"))

	detail := testutil.DecodeBody[services.BlogDetail](t, w)
	require.Equal(t, "Hello World", detail.MainBlog.Title)
	require.Equal(t, "hello-world", detail.MainBlog.Slug)
	require.True(t, env.Cached(cache.BlogSlugKey("hello-world")))

	// A second read is served from the cache even after the row changes underneath.
	require.NoError(t, env.DB.Model(&models.Blog{}).Where("slug = ?", "hello-world").Update("title", "Changed").Error)
	w = env.Request(http.MethodGet, "/api/blogs/hello-world", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Hello World", testutil.DecodeBody[services.BlogDetail](t, w).MainBlog.Title)
}

func TestContentBlogByID(t *testing.T) {
	env := testutil.NewEnv(t)

	var blog models.Blog
	require.NoError(t, env.DB.Take(&blog, "slug = ?", "hello-world").Error)

	w := env.Request(http.MethodGet, "/api/blogs/id/"+blog.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, blog.ID, testutil.DecodeBody[services.BlogDetail](t, w).MainBlog.ID)
	require.True(t, env.Cached(cache.BlogIDKey(blog.ID)))
}

func TestContentBlogNotFound(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/blogs/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	resp := testutil.DecodeResponse(t, w)
	require.False(t, resp.Success)
	require.Equal(t, "NOT_FOUND", resp.Error.Code)
	require.False(t, env.Cached(cache.BlogSlugKey("does-not-exist")))
}

func TestContentBlogList(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/blogs?page=1&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	list := testutil.DecodeBody[services.BlogList](t, w)
	require.EqualValues(t, 1, list.Total)
	require.Equal(t, 1, list.Page)
	require.Equal(t, 5, list.Limit)
	require.Len(t, list.Data, 1)
	require.Equal(t, "hello-world", list.Data[0].Slug)
	require.True(t, env.Cached(cache.BlogListKey(1, 5)))

	w = env.Request(http.MethodGet, "/api/blogs/slugs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	slugs := testutil.DecodeBody[[]services.BlogSlug](t, w)
	require.Len(t, slugs, 1)
	require.Equal(t, "hello-world", slugs[0].Slug)
}

func TestContentHome(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/home", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	home := testutil.DecodeBody[services.Home](t, w)
	require.NotNil(t, home.LatestBlog)
	require.Equal(t, "hello-world", home.LatestBlog.Slug)
	require.NotNil(t, home.LatestProject)
	require.Equal(t, "Portfolio", home.LatestProject.Title)
	require.NotNil(t, home.LatestUpdate)
	require.True(t, env.Cached(cache.HomeKey))
}

func TestContentProjects(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, testutil.DecodeBody[[]models.Project](t, w), 1)

	w = env.Request(http.MethodGet, "/api/projects/portfolio", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "Portfolio", testutil.DecodeBody[models.Project](t, w).Title)

	w = env.Request(http.MethodGet, "/api/projects/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestContentUpdates(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/updates?limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updates := testutil.DecodeBody[[]models.Update](t, w)
	require.Len(t, updates, 1)
	require.Equal(t, "Site launched", updates[0].Title)
}

func TestUnknownAPIRoute(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	resp := testutil.DecodeResponse(t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
}

func TestHealthEndpoint(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &body)
	require.Equal(t, "ok", body.Status)
	require.Equal(t, "ok", body.Checks["database"])
	require.Equal(t, "ok", body.Checks["cache"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := testutil.NewEnv(t)

	env.Request(http.MethodGet, "/api/home", nil)
	w := env.Request(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "portfolio_api_latency_seconds")
}
