package models

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"
	"time"
)

func TestPlan_Valid(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
		want bool
	}{
		{"no sections", Plan{Title: "x"}, false},
		{"blank heading", Plan{Sections: []SectionSpec{{Heading: "Intro"}, {Heading: "  "}}}, false},
		{"ok", Plan{Sections: []SectionSpec{{Heading: "Intro", Brief: "b"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.plan.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocument_RenderInput(t *testing.T) {
	doc := Document{
		SiteID:    "abc",
		Plan:      Plan{Title: "ML 101", MetaDescription: "meta"},
		Sections:  []GeneratedSection{{Heading: "Introduction", Content: "ML is great."}},
		ImagePath: "image_abc.png",
		CreatedAt: time.Date(2025, 12, 4, 10, 0, 0, 0, time.FixedZone("CET", 3600)),
	}

	in := doc.RenderInput()

	if in.Title != "ML 101" {
		t.Errorf("Title = %q", in.Title)
	}
	if in.ImageURL != "/image/image_abc.png" {
		t.Errorf("ImageURL = %q", in.ImageURL)
	}
	if in.GeneratedAt != "2025-12-04T09:00:00Z" {
		t.Errorf("GeneratedAt = %q, want UTC with Z", in.GeneratedAt)
	}

	doc.ImagePath = ""
	if got := doc.RenderInput().ImageURL; got != "" {
		t.Errorf("ImageURL without image = %q, want empty", got)
	}
}

func TestDocument_JSONFieldNames(t *testing.T) {
	doc := Document{SiteID: "abc", TemperatureUsed: 0.81, CreatedAt: time.Now()}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	jsonStr := string(data)
	for _, field := range []string{`"site_id"`, `"temperature_used"`, `"created_at"`, `"plan"`} {
		if !strings.Contains(jsonStr, field) {
			t.Errorf("JSON should contain field %s, got: %s", field, jsonStr)
		}
	}
}

func TestNewSiteID(t *testing.T) {
	a, b := NewSiteID(), NewSiteID()
	if len(a) != 32 {
		t.Errorf("len(NewSiteID()) = %d, want 32", len(a))
	}
	if a == b {
		t.Error("NewSiteID() returned the same id twice")
	}
	if !ValidSiteID(a) {
		t.Errorf("ValidSiteID(%q) = false", a)
	}
	if ValidSiteID("../etc/passwd") {
		t.Error("ValidSiteID should reject path traversal")
	}
}

func TestRandomSuffix_Deterministic(t *testing.T) {
	a := RandomSuffix(rand.New(rand.NewPCG(1, 2)), 6)
	b := RandomSuffix(rand.New(rand.NewPCG(1, 2)), 6)
	if a != b {
		t.Errorf("same seed gave %q and %q", a, b)
	}
	if len(a) != 6 {
		t.Errorf("len = %d, want 6", len(a))
	}
	if strings.Trim(a, "0123456789abcdef") != "" {
		t.Errorf("suffix %q is not lowercase hex", a)
	}
}

func TestRoundTemperature(t *testing.T) {
	if got := RoundTemperature(0.8349); got != 0.83 {
		t.Errorf("RoundTemperature(0.8349) = %v", got)
	}
}

func TestSimilarityMatrix_NearDuplicates(t *testing.T) {
	m := &SimilarityMatrix{
		Labels: []string{"a", "b", "c"},
		Scores: [][]float64{
			{1, 0.95, 0.2},
			{0.95, 1, 0.5},
			{0.2, 0.5, 1},
		},
	}

	pairs := m.NearDuplicates(0.92)

	if len(pairs) != 1 {
		t.Fatalf("NearDuplicates() = %v, want one pair", pairs)
	}
	if pairs[0].A != "a" || pairs[0].B != "b" {
		t.Errorf("pair = %+v, want a/b", pairs[0])
	}

	var nilMatrix *SimilarityMatrix
	if got := nilMatrix.NearDuplicates(0.5); got != nil {
		t.Errorf("nil matrix NearDuplicates() = %v", got)
	}
}

func TestSummarize(t *testing.T) {
	doc := &Document{
		SiteID:    "abc",
		Plan:      Plan{Title: "T"},
		Sections:  []GeneratedSection{{Heading: "Intro", Content: "x"}},
		ImagePath: "image_abc.png",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	got := Summarize(doc)
	if got.URL != "/site/abc" || got.ImageURL != "/image/image_abc.png" {
		t.Errorf("Summarize() = %+v", got)
	}
	if got.Sections != 1 || got.CreatedAt != "2024-01-02T03:04:05Z" {
		t.Errorf("Summarize() = %+v", got)
	}
}
