package models

import (
	"fmt"
	"slices"
	"strings"
)

// Style is the presentation style of a generated site.
type Style string

const (
	StyleEducational Style = "educational"
	StyleMarketing   Style = "marketing"
	StyleTechnical   Style = "technical"
	StyleMinimalist  Style = "minimalist"
	StyleCreative    Style = "creative"
	StyleCasual      Style = "casual"
)

// Styles lists every supported style.
var Styles = []Style{StyleEducational, StyleMarketing, StyleTechnical, StyleMinimalist, StyleCreative, StyleCasual}

// ParseStyle normalises s and reports whether it names a supported style.
func ParseStyle(s string) (Style, bool) {
	st := Style(strings.ToLower(strings.TrimSpace(s)))
	return st, slices.Contains(Styles, st)
}

// Global bounds of the request surface.
const (
	MinTemperature = 0.1
	MaxTemperature = 1.5
	MinTopP        = 0.1
	MaxTopP        = 1.0
	MinPages       = 1
	MaxPages       = 30
	MinMaxTokens   = 500
	MaxMaxTokens   = 3000
	MinTopicLength = 3
	MaxTopicLength = 200
)

var forbiddenTopicWords = []string{"hack", "exploit", "malware", "virus"}

// Request describes one batch generation.
type Request struct {
	Topic                string  `json:"topic" yaml:"topic"`
	Pages                int     `json:"pages_count" yaml:"pages_count"`
	Style                Style   `json:"style" yaml:"style"`
	MaxTokens            int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature          float64 `json:"temperature" yaml:"temperature"`
	TopP                 float64 `json:"top_p" yaml:"top_p"`
	GenerateImage        bool    `json:"generate_image" yaml:"generate_image"`
	RandomizeTemperature bool    `json:"randomize_temperature" yaml:"randomize_temperature"`
	TemperatureMin       float64 `json:"temperature_min" yaml:"temperature_min"`
	TemperatureMax       float64 `json:"temperature_max" yaml:"temperature_max"`
}

// DefaultRequest returns a request with every optional field set.
func DefaultRequest() Request {
	return Request{
		Pages:          1,
		Style:          StyleEducational,
		MaxTokens:      1200,
		Temperature:    0.8,
		TopP:           0.95,
		GenerateImage:  true,
		TemperatureMin: 0.5,
		TemperatureMax: 1.2,
	}
}

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate normalises the request in place (trimmed topic, lower-case
// style) and checks every bound.
func (r *Request) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if n := len([]rune(r.Topic)); n < MinTopicLength || n > MaxTopicLength {
		return invalid("topic", "must be %d-%d characters long", MinTopicLength, MaxTopicLength)
	}
	lower := strings.ToLower(r.Topic)
	for _, w := range forbiddenTopicWords {
		if strings.Contains(lower, w) {
			return invalid("topic", "contains forbidden keywords")
		}
	}

	if r.Pages < MinPages || r.Pages > MaxPages {
		return invalid("pages_count", "must be between %d and %d, got %d", MinPages, MaxPages, r.Pages)
	}

	style, ok := ParseStyle(string(r.Style))
	if !ok {
		names := make([]string, len(Styles))
		for i, s := range Styles {
			names[i] = string(s)
		}
		return invalid("style", "must be one of: %s. Got: %s", strings.Join(names, ", "), r.Style)
	}
	r.Style = style

	if r.MaxTokens < MinMaxTokens || r.MaxTokens > MaxMaxTokens {
		return invalid("max_tokens", "must be between %d and %d, got %d", MinMaxTokens, MaxMaxTokens, r.MaxTokens)
	}
	if r.TopP < MinTopP || r.TopP > MaxTopP {
		return invalid("top_p", "must be between %.1f and %.1f, got %g", MinTopP, MaxTopP, r.TopP)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"temperature", r.Temperature},
		{"temperature_min", r.TemperatureMin},
		{"temperature_max", r.TemperatureMax},
	} {
		if f.v < MinTemperature || f.v > MaxTemperature {
			return invalid(f.name, "must be between %.1f and %.1f, got %g", MinTemperature, MaxTemperature, f.v)
		}
	}
	if r.TemperatureMax <= r.TemperatureMin {
		return invalid("temperature_max", "(%g) must be greater than temperature_min (%g)", r.TemperatureMax, r.TemperatureMin)
	}
	return nil
}
