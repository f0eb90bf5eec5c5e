// Package web holds the embedded HTML templates and the flash notice cookie.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"blogsite/internal/forms"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "layout.html"

// Views renders pages, each parsed together with the shared layout.
// It satisfies fiber.Views.
type Views struct {
	files fs.FS
	pages map[string]*template.Template
}

// NewViews returns Views over the embedded templates.
func NewViews() *Views {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return &Views{files: sub}
}

// Funcs available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		// safe marks stored rich text as trusted HTML.
		"safe": func(s string) template.HTML { return template.HTML(s) },
		"fieldError": func(errs forms.Errors, field string) string {
			return errs.Get(field)
		},
	}
}

// Load parses every page with the layout.
func (v *Views) Load() error {
	pages, err := fs.Glob(v.files, "*.html")
	if err != nil {
		return err
	}
	v.pages = make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		if page == layoutFile {
			continue
		}
		t, err := template.New(layoutFile).Funcs(Funcs()).ParseFS(v.files, layoutFile, page)
		if err != nil {
			return fmt.Errorf("parse %s: %w", page, err)
		}
		v.pages[strings.TrimSuffix(path.Base(page), ".html")] = t
	}
	return nil
}

// Render executes the layout for page name. The layout argument is ignored;
// every page shares the one layout.
func (v *Views) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", binding)
}
