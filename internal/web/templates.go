// Package web renders the server-side dashboard page: one column per
// category in the client's saved order, plus the events panel.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"Monitor/internal/core/posts"

	"github.com/samber/lo"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates holds the parsed HTML templates for the dashboard.
type Templates struct {
	templates *template.Template
}

var funcs = template.FuncMap{
	"ago":      ago,
	"hostname": posts.Hostname,
	"images":   imageMedia,
}

// NewTemplates creates a new Templates instance by parsing all embedded templates.
func NewTemplates() (*Templates, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Templates{templates: tmpl}, nil
}

// Render renders a named template with the provided data to the response writer.
// Returns an error if the template doesn't exist or rendering fails.
func (t *Templates) Render(w http.ResponseWriter, name string, data interface{}) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	tmpl := t.templates.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("template %q not found", name)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", name, err)
	}

	return nil
}

// imageMedia keeps the media URLs that point at images
func imageMedia(media []string) []string {
	return lo.Filter(media, func(m string, _ int) bool { return posts.IsImageURL(m) })
}

// ago formats a timestamp relative to now, coarsely
func ago(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.UTC().Format("Jan 2 15:04")
	}
}
