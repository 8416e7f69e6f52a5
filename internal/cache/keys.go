package cache

import (
	"strconv"
	"strings"
	"time"
)

// Key scheme and TTLs. Keys must stay byte-identical to what other deployments
// write so a shared Redis keeps serving existing entries.
const (
	BlogSlugsKey = "blogs:all_slugs"
	HomeKey      = "home:data"

	BlogListTTL  = 1800 * time.Second
	BlogSlugsTTL = 300 * time.Second
	BlogSlugTTL  = 3600 * time.Second
	BlogIDTTL    = 3600 * time.Second
	ProjectTTL   = 3600 * time.Second
	HomeTTL      = 600 * time.Second
)

// BlogListKey names one page of the blog listing.
func BlogListKey(page, limit int) string {
	return "blogs:page:" + strconv.Itoa(page) + ":limit:" + strconv.Itoa(limit)
}

// BlogSlugKey names a blog detail looked up by slug.
func BlogSlugKey(slug string) string {
	return "blog:" + slug
}

// BlogIDKey names a blog detail looked up by id.
func BlogIDKey(id string) string {
	return "blog:id:" + id
}

// ProjectKey names a project detail by the identifier it was requested with.
func ProjectKey(id string) string {
	return "project:" + id
}

// Namespace returns the metric label for a key: everything before the first colon.
func Namespace(key string) string {
	if idx := strings.IndexByte(key, ':'); idx > 0 {
		return key[:idx]
	}
	return "other"
}
