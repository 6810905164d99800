package models

import "time"

// IndexedSite is the search-index view of a generated document.
type IndexedSite struct {
	SiteID          string    `json:"site_id"`
	RunID           string    `json:"run_id,omitempty"`
	Topic           string    `json:"topic"`
	Style           Style     `json:"style"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	Headings        []string  `json:"headings"`
	Content         string    `json:"content"` // Markdown of the rendered page
	TemperatureUsed float64   `json:"temperature_used"`
	PlanFallback    bool      `json:"plan_fallback"`
	CreatedAt       time.Time `json:"created_at"`
	Embedding       []float32 `json:"embedding,omitempty"`
}

// NewIndexedSite builds the index view of doc with the given page content.
func NewIndexedSite(doc *Document, runID, content string) IndexedSite {
	headings := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		headings[i] = s.Heading
	}
	return IndexedSite{
		SiteID:          doc.SiteID,
		RunID:           runID,
		Topic:           doc.Topic,
		Style:           doc.Style,
		Title:           doc.Plan.Title,
		MetaDescription: doc.Plan.MetaDescription,
		Headings:        headings,
		Content:         content,
		TemperatureUsed: doc.TemperatureUsed,
		PlanFallback:    doc.PlanFallback,
		CreatedAt:       doc.CreatedAt,
	}
}
