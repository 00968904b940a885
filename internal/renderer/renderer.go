package renderer

import (
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

// TemplateRenderer implements echo.Renderer
type TemplateRenderer struct {
	Templates map[string]*template.Template
}

// New creates a TemplateRenderer with every page parsed from fsys
func New(fsys fs.FS) (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		Templates: make(map[string]*template.Template),
	}
	if err := r.parseTemplates(fsys); err != nil {
		return nil, err
	}
	return r, nil
}

func (t *TemplateRenderer) parseTemplates(fsys fs.FS) error {
	pages := map[string][]string{
		"dashboard": {"layouts/base.html", "partials/notifications.html", "pages/dashboard.html"},
		// Login is standalone
		"login": {"partials/notifications.html", "pages/login.html"},
	}

	for name, files := range pages {
		tmpl, err := template.ParseFS(fsys, files...)
		if err != nil {
			return err
		}
		t.Templates[name] = tmpl
	}
	return nil
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.Templates[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Template not found: "+name)
	}

	return tmpl.ExecuteTemplate(w, "base", data)
}
