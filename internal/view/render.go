package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer executes the embedded page and fragment templates: index, cart,
// minicart, catalog, card and admin.
type Renderer struct {
	t *template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"price": FormatPrice,
		"img":   imageSrc,
	}
	t, err := template.New("_root").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

// MustRenderer panics when the embedded templates do not parse.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes name fully before writing so a failing template leaves w
// untouched.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// imageSrc lets the embedded placeholders through html/template's URL
// filter. Anything else goes through the normal escaping.
func imageSrc(s string) any {
	if s == Placeholder || s == GalleryPlaceholder {
		return template.URL(s)
	}
	return s
}

type Notice struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type Suggestion struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// IndexPage is the data of the full storefront page.
type IndexPage struct {
	Catalog     CatalogView
	Cart        CartView
	MiniCart    MiniCartView
	LoggedIn    bool
	Email       string
	Notices     []Notice
	Suggestions []Suggestion
}
