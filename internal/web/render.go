package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templatesFS embed.FS

var views = []string{"home", "signup", "login", "create", "detail", "current", "completed", "error"}

type renderer struct {
	views map[string]*template.Template
}

// newRenderer parses each view together with the shared layout.
func newRenderer() *renderer {
	funcs := template.FuncMap{
		"formatTime":         formatTime,
		"formatOptionalTime": formatOptionalTime,
	}
	layout := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html"))

	r := &renderer{views: make(map[string]*template.Template, len(views))}
	for _, name := range views {
		view := template.Must(layout.Clone())
		r.views[name] = template.Must(view.ParseFS(templatesFS, "templates/"+name+".html"))
	}
	return r
}

func (r *renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	view, ok := r.views[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}
	return view.ExecuteTemplate(w, "layout", data)
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("2006-01-02 15:04")
}

func formatOptionalTime(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return formatTime(*value)
}
