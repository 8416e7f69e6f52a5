package web

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var staticFS embed.FS

// FS returns the built frontend rooted at dist/, so index.html sits at the top.
func FS() (fs.FS, error) {
	return fs.Sub(staticFS, "dist")
}
