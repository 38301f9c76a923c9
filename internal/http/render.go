package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/cockroachdb/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index.html",
	"booking.html",
	"payment.html",
	"confirmation.html",
	"cancel.html",
	"flight.html",
	"bookings.html",
}

// view is what every page template receives. Alert is rendered as the
// page's role="alert" banner.
type view struct {
	Title string
	Alert string
	Data  interface{}
}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", name)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, v view) error {
	t, ok := r.pages[page]
	if !ok {
		return errors.Newf("unknown page %s", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return errors.Wrapf(err, "render %s", page)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
