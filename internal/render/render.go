// Package render turns a finished document into a styled HTML page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/mfenderov/sitegen/pkg/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// templateNames maps each style to its template. Casual uses the base page.
var templateNames = map[models.Style]string{
	models.StyleEducational: "educational.html",
	models.StyleMarketing:   "marketing.html",
	models.StyleTechnical:   "technical.html",
	models.StyleMinimalist:  "minimalist.html",
	models.StyleCreative:    "creative.html",
	models.StyleCasual:      "base.html",
}

// TemplateName returns the template used for style; unknown styles use
// the educational template.
func TemplateName(style models.Style) string {
	if name, ok := templateNames[style]; ok {
		return name
	}
	return templateNames[models.StyleEducational]
}

// Renderer renders pages from embedded templates. Section contents are
// treated as Markdown; raw HTML in them is not passed through.
type Renderer struct {
	tmpl *template.Template
	md   goldmark.Markdown
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{
		tmpl: tmpl,
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

type pageSection struct {
	Heading string
	Body    template.HTML
}

type page struct {
	Title           string
	MetaDescription string
	ImageURL        string
	GeneratedAt     string
	Sections        []pageSection
}

// Render produces the HTML page for in using the template of style.
func (r *Renderer) Render(style models.Style, in models.RenderInput) (string, error) {
	p := page{
		Title:           in.Title,
		MetaDescription: in.MetaDescription,
		ImageURL:        in.ImageURL,
		GeneratedAt:     in.GeneratedAt,
		Sections:        make([]pageSection, 0, len(in.Sections)),
	}
	for _, s := range in.Sections {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(s.Content), &buf); err != nil {
			return "", fmt.Errorf("failed to render section %q: %w", s.Heading, err)
		}
		p.Sections = append(p.Sections, pageSection{Heading: s.Heading, Body: template.HTML(buf.String())})
	}

	name := TemplateName(style)
	var out bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&out, name, p); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	slog.Debug("HTML rendered", "template", name, "bytes", out.Len())
	return out.String(), nil
}
