package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mfenderov/sitegen/internal/pipeline"
	"github.com/mfenderov/sitegen/pkg/models"
)

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"short", "short"},
		{"exactly 15 char", "exactly 15 char"},
		{"Machine Learning Basics", "Machine Learnin"},
		{"Überraschung für alle", "Überraschung fü"},
	}
	for _, tt := range tests {
		if got := truncateLabel(tt.in); got != tt.want {
			t.Errorf("truncateLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintSimilarity(t *testing.T) {
	m := &models.SimilarityMatrix{
		Labels:   []string{"Dogs are great pets", "Cats"},
		Scores:   [][]float64{{1, 0.95432}, {0.95432, 1}},
		Lexical:  [][]float64{{1, 0.5}, {0.5, 1}},
		Embedder: "hash-384",
	}
	var buf bytes.Buffer
	printSimilarity(&buf, m, m.NearDuplicates(0.9))
	out := buf.String()

	for _, want := range []string{"hash-384", "Dogs are great ", "0.954", "1.000", "Lexical overlap:", "0.500", "Near duplicates:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0.95432") {
		t.Error("scores should be printed with 3 decimals")
	}

	buf.Reset()
	printSimilarity(&buf, nil, nil)
	if !strings.Contains(buf.String(), "Not enough documents") {
		t.Errorf("nil matrix output = %q", buf.String())
	}
}

func TestWriteStructured(t *testing.T) {
	run := &pipeline.Run{
		ID:        "run1",
		Documents: []*models.Document{{SiteID: "a", Plan: models.Plan{Title: "ML 101"}}},
		StartedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := writeStructured(&buf, "json", run); err != nil {
		t.Fatalf("json error = %v", err)
	}
	if !strings.Contains(buf.String(), `"run_id": "run1"`) {
		t.Errorf("json output = %s", buf.String())
	}

	buf.Reset()
	if err := writeStructured(&buf, "yaml", run); err != nil {
		t.Fatalf("yaml error = %v", err)
	}
	if !strings.Contains(buf.String(), "run_id: run1") {
		t.Errorf("yaml output = %s", buf.String())
	}

	if err := writeStructured(&buf, "xml", run); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPrintRun(t *testing.T) {
	run := &pipeline.Run{
		ID:      "run1",
		Request: models.Request{Topic: "Rust"},
		Documents: []*models.Document{{
			SiteID:           "a",
			Plan:             models.Plan{Title: "Rust — Comprehensive Guide 1a2b3c4d"},
			PlanFallback:     true,
			SectionFallbacks: []string{"Introduction"},
			ImagePath:        "image_a.png",
		}},
		Errors: []string{"failed to store record a"},
	}
	var buf bytes.Buffer
	printRun(&buf, run)
	out := buf.String()
	for _, want := range []string{"Run run1", "plan fallback", "1 section fallback(s)", "/image/image_a.png", "Warning: failed to store record a"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
