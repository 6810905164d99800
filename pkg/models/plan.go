package models

import "strings"

// Plan is the outline of one generated document, produced by the planning
// call before any prose is written.
type Plan struct {
	Title           string        `json:"title" jsonschema_description:"Unique, descriptive page title"`
	MetaDescription string        `json:"meta_description" jsonschema_description:"SEO description, at most 160 characters"`
	ImagePrompt     string        `json:"image_prompt" jsonschema_description:"Prompt for a single illustration of the page"`
	Sections        []SectionSpec `json:"sections" jsonschema:"minItems=1" jsonschema_description:"Ordered sections; first is introductory, last is concluding"`
}

// SectionSpec is a planned section. Brief doubles as fallback content.
type SectionSpec struct {
	Heading string `json:"heading" jsonschema_description:"Section heading"`
	Brief   string `json:"brief" jsonschema_description:"One sentence describing the section"`
}

// GeneratedSection is the final heading/content pair attached to a Document.
type GeneratedSection struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// Valid reports whether the plan has at least one section and every
// heading is non-blank.
func (p Plan) Valid() bool {
	if len(p.Sections) == 0 {
		return false
	}
	for _, s := range p.Sections {
		if strings.TrimSpace(s.Heading) == "" {
			return false
		}
	}
	return true
}

// Headings returns the planned headings in order.
func (p Plan) Headings() []string {
	out := make([]string, len(p.Sections))
	for i, s := range p.Sections {
		out[i] = s.Heading
	}
	return out
}
