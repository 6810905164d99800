// Package sections maps loosely structured generator prose back onto the
// planned section headings.
package sections

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mfenderov/sitegen/pkg/models"
)

// Delimiter precedes every section heading in the writing output.
const Delimiter = "###"

// Extraction is the result of Extract. Fallbacks lists, in planned order,
// the headings whose content came from the brief.
type Extraction struct {
	Sections  []models.GeneratedSection
	Fallbacks []string
}

// Matched returns the number of sections found in the generated text.
func (e Extraction) Matched() int {
	return len(e.Sections) - len(e.Fallbacks)
}

// Extract returns exactly one section per planned spec, in planned order,
// each with non-blank whitespace-collapsed content.
//
// Blocks are scanned in the order they appear in raw. A block belongs to
// the longest planned heading it starts with, so "Summary and CTA" is never
// taken by a planned "Summary". Blocks are not consumed: a repeated heading
// in the plan resolves to the same block.
func Extract(raw string, planned []models.SectionSpec) Extraction {
	blocks := splitBlocks(raw)

	owners := make([]int, len(blocks))
	for i, b := range blocks {
		owners[i] = owner(b, planned)
	}

	out := Extraction{Sections: make([]models.GeneratedSection, 0, len(planned))}
	for _, spec := range planned {
		content := ""
		for i, b := range blocks {
			if owners[i] < 0 || planned[owners[i]].Heading != spec.Heading {
				continue
			}
			content = normalize(b[len(spec.Heading):])
			break
		}

		if content == "" {
			content = normalize(spec.Brief)
			if content == "" {
				content = "Information about " + spec.Heading
			}
			out.Fallbacks = append(out.Fallbacks, spec.Heading)
			slog.Warn("No content found for section, using brief", "heading", spec.Heading)
		}
		out.Sections = append(out.Sections, models.GeneratedSection{Heading: spec.Heading, Content: content})
	}

	slog.Debug("Extracted sections", "planned", len(planned), "matched", out.Matched(), "blocks", len(blocks))
	return out
}

// splitBlocks drops the text before the first delimiter.
func splitBlocks(raw string) []string {
	parts := strings.Split(raw, Delimiter)
	if len(parts) < 2 {
		return nil
	}
	blocks := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		blocks = append(blocks, strings.TrimSpace(p))
	}
	return blocks
}

// owner returns the index of the longest planned heading the block starts
// with, or -1.
func owner(block string, planned []models.SectionSpec) int {
	best := -1
	for i, spec := range planned {
		if !headedBy(block, spec.Heading) {
			continue
		}
		if best < 0 || len(spec.Heading) > len(planned[best].Heading) {
			best = i
		}
	}
	return best
}

// headedBy reports whether block starts with heading followed by end of
// text, a line break or a non-alphanumeric rune.
func headedBy(block, heading string) bool {
	if strings.TrimSpace(heading) == "" || !strings.HasPrefix(block, heading) {
		return false
	}
	rest := block[len(heading):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return r == '\n' || !(unicode.IsLetter(r) || unicode.IsDigit(r))
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
