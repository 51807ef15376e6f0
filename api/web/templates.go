package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageNotFound = "not_found"
	pageError    = "error"
)

var pageNames = []string{
	"index",
	"entry",
	"search",
	"new",
	"edit",
	pageNotFound,
	pageError,
}

// EntryURL is the path of the page showing title.
func EntryURL(title string) string {
	return "/wiki/" + url.PathEscape(title)
}

func EditURL(title string) string {
	return "/edit/" + url.PathEscape(title)
}

var funcs = template.FuncMap{
	"entryURL": EntryURL,
	"editURL":  EditURL,
}

// Pages holds one parsed template set per page, each combined with the
// shared layout.
type Pages struct {
	pages map[string]*template.Template
}

func LoadPages() (*Pages, error) {
	p := &Pages{
		pages: make(map[string]*template.Template, len(pageNames)),
	}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", name, err)
		}
		p.pages[name] = t
	}
	return p, nil
}

func (p *Pages) Render(w io.Writer, name string, data any) error {
	t, ok := p.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("render %s page: %w", name, err)
	}
	return nil
}
