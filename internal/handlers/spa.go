package handlers

import (
	"bytes"
	"fmt"
	"html"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ichwanardi/portfolio/internal/middleware"
	"github.com/ichwanardi/portfolio/internal/services"
	"github.com/ichwanardi/portfolio/pkg/logger"
)

// SiteMeta holds the defaults used for Open Graph tags.
type SiteMeta struct {
	URL         string
	Name        string
	Description string
	Image       string
}

// SPAHandler serves the embedded frontend. Deep links to a blog post or project get
// their Open Graph tags injected into index.html so link previews work without
// executing JavaScript.
type SPAHandler struct {
	files    fs.FS
	static   http.Handler
	index    []byte
	blogs    *services.BlogService
	projects *services.ProjectService
	site     SiteMeta
}

type pageMeta struct {
	title       string
	description string
	image       string
	kind        string
}

// NewSPAHandler loads index.html from files.
func NewSPAHandler(files fs.FS, blogs *services.BlogService, projects *services.ProjectService, site SiteMeta) (*SPAHandler, error) {
	index, err := fs.ReadFile(files, "index.html")
	if err != nil {
		return nil, fmt.Errorf("spa: read index.html: %w", err)
	}
	site.URL = strings.TrimRight(site.URL, "/")

	return &SPAHandler{
		files:    files,
		static:   http.FileServer(http.FS(files)),
		index:    index,
		blogs:    blogs,
		projects: projects,
		site:     site,
	}, nil
}

// Serve is installed as the router's NoRoute handler.
func (h *SPAHandler) Serve(c *gin.Context) {
	reqPath := c.Request.URL.Path
	if reqPath == "/api" || strings.HasPrefix(reqPath, "/api/") {
		middleware.NotFoundHandler(c)
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		middleware.NotFoundHandler(c)
		return
	}

	name := strings.TrimPrefix(path.Clean(reqPath), "/")
	if name != "" && name != "index.html" {
		if info, err := fs.Stat(h.files, name); err == nil && !info.IsDir() {
			if strings.HasPrefix(name, "assets/") {
				c.Header("Cache-Control", "public, max-age=31536000, immutable")
			}
			h.static.ServeHTTP(c.Writer, c.Request)
			return
		}
	}

	body := h.index
	if meta, ok := h.lookup(c, reqPath); ok {
		body = injectMeta(h.index, h.render(meta, reqPath))
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

func (h *SPAHandler) lookup(c *gin.Context, reqPath string) (pageMeta, bool) {
	segments := strings.Split(strings.Trim(reqPath, "/"), "/")
	if len(segments) != 2 || segments[1] == "" {
		return pageMeta{}, false
	}
	ctx := requestContext(c)

	switch segments[0] {
	case "blog", "blogs":
		if h.blogs == nil {
			return pageMeta{}, false
		}
		detail, err := h.blogs.GetBySlug(ctx, segments[1])
		if err != nil {
			h.logLookup("blog", segments[1], err)
			return pageMeta{}, false
		}
		blog := detail.MainBlog
		return pageMeta{title: blog.Title, description: blog.Excerpt, image: blog.CoverImage, kind: "article"}, true
	case "projects", "project":
		if h.projects == nil {
			return pageMeta{}, false
		}
		project, err := h.projects.Get(ctx, segments[1])
		if err != nil {
			h.logLookup("project", segments[1], err)
			return pageMeta{}, false
		}
		var image string
		if len(project.Images) > 0 {
			image = project.Images[0]
		}
		return pageMeta{title: project.Title, description: project.Description, image: image, kind: "website"}, true
	default:
		return pageMeta{}, false
	}
}

func (h *SPAHandler) logLookup(resource, identifier string, err error) {
	if translate(err).StatusCode == http.StatusNotFound {
		return
	}
	logger.WithModule("spa").Warn("open graph lookup failed",
		zap.String("resource", resource),
		zap.String("key", identifier),
		zap.Error(err),
	)
}

func (h *SPAHandler) render(meta pageMeta, reqPath string) string {
	title := meta.title
	if h.site.Name != "" {
		title = meta.title + " | " + h.site.Name
	}
	description := meta.description
	if description == "" {
		description = h.site.Description
	}
	image := h.absolute(meta.image)
	if image == "" {
		image = h.absolute(h.site.Image)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	writeMeta(&b, "name", "description", description)
	writeMeta(&b, "property", "og:type", meta.kind)
	writeMeta(&b, "property", "og:title", meta.title)
	writeMeta(&b, "property", "og:description", description)
	writeMeta(&b, "property", "og:site_name", h.site.Name)
	writeMeta(&b, "property", "og:url", h.absolute(reqPath))
	writeMeta(&b, "property", "og:image", image)
	card := "summary"
	if image != "" {
		card = "summary_large_image"
	}
	writeMeta(&b, "name", "twitter:card", card)
	writeMeta(&b, "name", "twitter:title", meta.title)
	writeMeta(&b, "name", "twitter:description", description)
	writeMeta(&b, "name", "twitter:image", image)
	return b.String()
}

// absolute turns site-relative paths into absolute URLs when a site URL is configured.
func (h *SPAHandler) absolute(value string) string {
	if value == "" || h.site.URL == "" || !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") {
		return value
	}
	return h.site.URL + value
}

func writeMeta(b *strings.Builder, attr, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "<meta %s=\"%s\" content=\"%s\">\n", attr, key, html.EscapeString(value))
}

var (
	titleOpen  = []byte("<title>")
	titleClose = []byte("</title>")
	headClose  = []byte("</head>")
)

// injectMeta drops the page's existing <title> and inserts tags before </head>.
func injectMeta(index []byte, tags string) []byte {
	out := index
	if start := bytes.Index(out, titleOpen); start >= 0 {
		if end := bytes.Index(out[start:], titleClose); end >= 0 {
			trimmed := make([]byte, 0, len(out))
			trimmed = append(trimmed, out[:start]...)
			trimmed = append(trimmed, out[start+end+len(titleClose):]...)
			out = trimmed
		}
	}

	at := bytes.Index(out, headClose)
	if at < 0 {
		return out
	}
	result := make([]byte, 0, len(out)+len(tags))
	result = append(result, out[:at]...)
	result = append(result, tags...)
	result = append(result, out[at:]...)
	return result
}
