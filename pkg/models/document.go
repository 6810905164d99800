package models

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is the generation record of one site.
type Document struct {
	SiteID             string             `json:"site_id"`
	Topic              string             `json:"topic"`
	Style              Style              `json:"style"`
	Plan               Plan               `json:"plan"`
	Sections           []GeneratedSection `json:"sections"`
	TemperatureUsed    float64            `json:"temperature_used"`
	ContentTemperature float64            `json:"content_temperature"`
	ImagePath          string             `json:"image_path,omitempty"` // image_{site_id}.png when generated
	FilePath           string             `json:"file_path,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`

	PlanFallback     bool     `json:"plan_fallback,omitempty"`
	SectionFallbacks []string `json:"section_fallbacks,omitempty"` // headings filled from their brief
	TitleAdjusted    bool     `json:"title_adjusted,omitempty"`
}

// RenderInput is what the renderer receives for one document.
type RenderInput struct {
	Title           string             `json:"title"`
	MetaDescription string             `json:"meta_description"`
	Sections        []GeneratedSection `json:"sections"`
	ImageURL        string             `json:"image_url,omitempty"`
	GeneratedAt     string             `json:"generated_at"`
}

// Title returns the final, run-unique title.
func (d *Document) Title() string {
	return d.Plan.Title
}

// ImageURL is the public URL of the document image, or "" without one.
func (d *Document) ImageURL() string {
	if d.ImagePath == "" {
		return ""
	}
	return "/image/" + d.ImagePath
}

// RenderInput builds the renderer payload.
func (d *Document) RenderInput() RenderInput {
	return RenderInput{
		Title:           d.Plan.Title,
		MetaDescription: d.Plan.MetaDescription,
		Sections:        d.Sections,
		ImageURL:        d.ImageURL(),
		GeneratedAt:     d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Text joins the section contents, used when the rendered markup is unavailable.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Sections)+1)
	parts = append(parts, d.Plan.Title)
	for _, s := range d.Sections {
		parts = append(parts, s.Heading, s.Content)
	}
	return strings.Join(parts, " ")
}

// NewSiteID returns a new opaque site identifier (32 hex chars).
func NewSiteID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RandomSuffix returns n lowercase hex characters drawn from rnd.
func RandomSuffix(rnd *rand.Rand, n int) string {
	const hex = "0123456789abcdef"
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(hex[rnd.IntN(len(hex))])
	}
	return b.String()
}

// RoundTemperature rounds to two decimals, the precision kept in records.
func RoundTemperature(t float64) float64 {
	return math.Round(t*100) / 100
}

// ValidSiteID reports whether id looks like an identifier produced by NewSiteID.
// Used to keep user supplied ids out of storage paths.
func ValidSiteID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

func (d *Document) String() string {
	return fmt.Sprintf("%s %q (%d sections)", d.SiteID, d.Plan.Title, len(d.Sections))
}
