package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/mfenderov/sitegen/internal/pipeline"
	"github.com/mfenderov/sitegen/pkg/models"
)

const labelWidth = 15

// writeStructured writes v as indented JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// truncateLabel shortens s to the table column width.
func truncateLabel(s string) string {
	r := []rune(s)
	if len(r) <= labelWidth {
		return s
	}
	return string(r[:labelWidth])
}

// printMatrix prints scores as a table with 3 decimals.
func printMatrix(w io.Writer, title string, labels []string, scores [][]float64) {
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "%-*s", labelWidth, "")
	for _, l := range labels {
		fmt.Fprintf(w, " %*s", labelWidth, truncateLabel(l))
	}
	fmt.Fprintln(w)
	for i, row := range scores {
		fmt.Fprintf(w, "%-*s", labelWidth, truncateLabel(labels[i]))
		for _, v := range row {
			fmt.Fprintf(w, " %*.3f", labelWidth, v)
		}
		fmt.Fprintln(w)
	}
}

// printSimilarity prints the cosine matrix, the lexical one when present,
// and near-duplicate pairs.
func printSimilarity(w io.Writer, m *models.SimilarityMatrix, dups []models.DuplicatePair) {
	if m == nil {
		fmt.Fprintln(w, "Not enough documents with text to compare.")
		return
	}
	printMatrix(w, fmt.Sprintf("Semantic similarity (%s):", m.Embedder), m.Labels, m.Scores)
	if m.Lexical != nil {
		fmt.Fprintln(w)
		printMatrix(w, "Lexical overlap:", m.Labels, m.Lexical)
	}
	if len(dups) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Near duplicates:")
		for _, p := range dups {
			fmt.Fprintf(w, "  %.3f  %s <-> %s\n", p.Score, p.A, p.B)
		}
	}
}

// printRun prints a human readable batch report.
func printRun(w io.Writer, run *pipeline.Run) {
	fmt.Fprintf(w, "Run %s: %d site(s) about %q in %v\n\n",
		run.ID, len(run.Documents), run.Request.Topic, run.Duration().Round(1e6))
	for i, d := range run.Documents {
		var notes []string
		if d.PlanFallback {
			notes = append(notes, "plan fallback")
		}
		if n := len(d.SectionFallbacks); n > 0 {
			notes = append(notes, fmt.Sprintf("%d section fallback(s)", n))
		}
		if d.TitleAdjusted {
			notes = append(notes, "title adjusted")
		}
		fmt.Fprintf(w, "[%d] %s\n", i+1, d.Title())
		fmt.Fprintf(w, "    id: %s  temperature: %.2f  sections: %d\n", d.SiteID, d.TemperatureUsed, len(d.Sections))
		if d.FilePath != "" {
			fmt.Fprintf(w, "    file: %s\n", d.FilePath)
		}
		if d.ImagePath != "" {
			fmt.Fprintf(w, "    image: %s\n", d.ImageURL())
		}
		if len(notes) > 0 {
			fmt.Fprintf(w, "    notes: %s\n", strings.Join(notes, ", "))
		}
	}
	for _, e := range run.Errors {
		fmt.Fprintf(w, "Warning: %s\n", e)
	}
	if len(run.Documents) > 1 {
		fmt.Fprintln(w)
		printSimilarity(w, run.Similarity, run.NearDuplicates)
	}
}
