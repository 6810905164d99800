package models

// SiteSummary is the listing view of a document.
type SiteSummary struct {
	SiteID           string   `json:"site_id"`
	Title            string   `json:"title"`
	Topic            string   `json:"topic"`
	Style            Style    `json:"style"`
	URL              string   `json:"url"`
	ImageURL         string   `json:"image_url,omitempty"`
	Sections         int      `json:"sections"`
	PlanFallback     bool     `json:"plan_fallback,omitempty"`
	SectionFallbacks []string `json:"section_fallbacks,omitempty"`
	TemperatureUsed  float64  `json:"temperature_used"`
	CreatedAt        string   `json:"created_at"`
}

// Summarize builds the listing view of doc.
func Summarize(doc *Document) SiteSummary {
	return SiteSummary{
		SiteID:           doc.SiteID,
		Title:            doc.Title(),
		Topic:            doc.Topic,
		Style:            doc.Style,
		URL:              "/site/" + doc.SiteID,
		ImageURL:         doc.ImageURL(),
		Sections:         len(doc.Sections),
		PlanFallback:     doc.PlanFallback,
		SectionFallbacks: doc.SectionFallbacks,
		TemperatureUsed:  doc.TemperatureUsed,
		CreatedAt:        doc.RenderInput().GeneratedAt,
	}
}
