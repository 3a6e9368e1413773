package views

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"cafe-directory/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const layout = "templates/layout.html"

// Page is the data every template receives. Handlers fill in the fields
// their page uses and leave the rest zero.
type Page struct {
	Title   string
	User    *models.User
	Flashes []string

	Cafes     []models.Cafe
	Cafe      *models.Cafe
	Locations []string
	Location  string

	// Form pages
	Editing bool
	Form    models.CafeForm
	Errors  map[string]string
	Email   string
	Name    string
	Contact models.ContactMessage
	MsgSent bool

	// error.html
	Status  int
	Message string
}

// FieldError returns the message recorded for a form field, if any.
func (p Page) FieldError(field string) string {
	return p.Errors[field]
}

// ErrWriteFailed marks a render whose status line was already sent when
// writing the body failed, so no other response can follow.
var ErrWriteFailed = errors.New("write page")

// Renderer executes the embedded page templates, each wrapped in the layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"yesno": func(b bool) string {
		if b {
			return "✔"
		}
		return "✘"
	},
	// pathEscape makes a value safe to use as a single path segment.
	"pathEscape": url.PathEscape,
	// dict lets a page pass several values to a shared sub-template.
	"dict": func(pairs ...any) (map[string]any, error) {
		if len(pairs)%2 != 0 {
			return nil, fmt.Errorf("dict needs key/value pairs, got %d arguments", len(pairs))
		}
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
	"checked": func(v string) bool {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y", "on":
			return true
		}
		return false
	},
}

// New parses every page once at startup.
func New() (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, file := range names {
		if file == layout {
			continue
		}
		t, err := template.New(path.Base(file)).Funcs(funcs).ParseFS(templateFS, layout, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[path.Base(file)] = t
	}
	return r, nil
}

// Render writes the named page with the given status. The page is executed
// into a buffer first so a template failure never sends a partial body.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q does not exist", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWriteFailed, name, err)
	}
	return nil
}
