// Package web bundles the shell's page templates and static assets into the
// binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var assets embed.FS

// TemplatePatterns lists the template globs in parse order: layouts first so
// pages can reference them, then partials, then pages.
var TemplatePatterns = []string{"layouts/*.html", "partials/*.html", "pages/*.html"}

var (
	// Templates is rooted at the templates directory.
	Templates = subtree("templates")
	// Static is rooted at the static directory and served under /static/.
	Static = subtree("static")
)

func subtree(dir string) fs.FS {
	sub, err := fs.Sub(assets, dir)
	if err != nil {
		panic("web: missing embedded " + dir + ": " + err.Error())
	}
	return sub
}
