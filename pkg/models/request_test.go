package models

import (
	"errors"
	"strings"
	"testing"
)

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Request)
		wantErr   bool
		wantField string
	}{
		{
			name:   "defaults with topic",
			mutate: func(r *Request) {},
		},
		{
			name:      "topic too short after trim",
			mutate:    func(r *Request) { r.Topic = "  ab  " },
			wantErr:   true,
			wantField: "topic",
		},
		{
			name:      "topic too long",
			mutate:    func(r *Request) { r.Topic = strings.Repeat("a", 201) },
			wantErr:   true,
			wantField: "topic",
		},
		{
			name:      "forbidden keyword",
			mutate:    func(r *Request) { r.Topic = "How to Hack a router" },
			wantErr:   true,
			wantField: "topic",
		},
		{
			name:      "too many pages",
			mutate:    func(r *Request) { r.Pages = 31 },
			wantErr:   true,
			wantField: "pages_count",
		},
		{
			name:      "zero pages",
			mutate:    func(r *Request) { r.Pages = 0 },
			wantErr:   true,
			wantField: "pages_count",
		},
		{
			name:      "unknown style",
			mutate:    func(r *Request) { r.Style = "brutalist" },
			wantErr:   true,
			wantField: "style",
		},
		{
			name:   "style is normalised",
			mutate: func(r *Request) { r.Style = "  Technical " },
		},
		{
			name:      "max tokens below range",
			mutate:    func(r *Request) { r.MaxTokens = 499 },
			wantErr:   true,
			wantField: "max_tokens",
		},
		{
			name:      "temperature above range",
			mutate:    func(r *Request) { r.Temperature = 1.6 },
			wantErr:   true,
			wantField: "temperature",
		},
		{
			name:      "top_p below range",
			mutate:    func(r *Request) { r.TopP = 0.05 },
			wantErr:   true,
			wantField: "top_p",
		},
		{
			name: "max not greater than min",
			mutate: func(r *Request) {
				r.TemperatureMin = 0.9
				r.TemperatureMax = 0.9
			},
			wantErr:   true,
			wantField: "temperature_max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := DefaultRequest()
			req.Topic = "Machine Learning"
			tt.mutate(&req)

			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error type = %T, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestRequest_ValidateNormalises(t *testing.T) {
	req := DefaultRequest()
	req.Topic = "   Machine Learning  "
	req.Style = "MARKETING"

	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if req.Topic != "Machine Learning" {
		t.Errorf("Topic = %q, want trimmed", req.Topic)
	}
	if req.Style != StyleMarketing {
		t.Errorf("Style = %q, want %q", req.Style, StyleMarketing)
	}
}

func TestParseStyle(t *testing.T) {
	for _, s := range Styles {
		if got, ok := ParseStyle(string(s)); !ok || got != s {
			t.Errorf("ParseStyle(%q) = %q, %v", s, got, ok)
		}
	}
	if _, ok := ParseStyle("gothic"); ok {
		t.Error("ParseStyle(gothic) should not be ok")
	}
}
