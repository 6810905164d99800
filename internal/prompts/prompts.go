// Package prompts builds the planning and writing prompts.
package prompts

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/mfenderov/sitegen/pkg/models"
)

// Section pools the planner picks headings from.
var (
	IntroSections = []string{"Introduction", "Overview"}
	CoreSections  = []string{
		"Use Cases", "Technical Details", "Key Features",
		"Tools and Libraries", "Examples", "Comparison",
		"Best Practices", "Common Challenges", "FAQ",
	}
	OutroSections = []string{"Summary", "Conclusion", "Summary and CTA"}
)

// Token limits of the two calls. The writing call uses the request's max_tokens.
const PlanMaxTokens = 1000

type styleGuide struct {
	instruction string
	approach    string
	wordCount   string
}

var guides = map[models.Style]styleGuide{
	models.StyleEducational: {
		"Explain clearly and step-by-step, suitable for learners.",
		"Use clear explanations, define terms, provide examples.",
		"80-120",
	},
	models.StyleMarketing: {
		"Catchy, benefit-focused, persuasive tone, short paragraphs.",
		"Use persuasive language, emphasize benefits, include strong calls-to-action.",
		"60-90",
	},
	models.StyleTechnical: {
		"Detailed, include code examples or pseudo-code if relevant.",
		"Include technical details, code examples if relevant, precise terminology.",
		"100-150",
	},
	models.StyleMinimalist: {
		"Concise, clean, focus on essential information only.",
		"Be concise and direct. Every word must count.",
		"40-70",
	},
	models.StyleCreative: {
		"Engaging, imaginative, use storytelling elements.",
		"Use vivid language, metaphors, storytelling.",
		"90-130",
	},
	models.StyleCasual: {
		"Friendly, conversational tone, easy to read.",
		"Write conversationally, use simple language.",
		"70-100",
	},
}

func guideFor(style models.Style) styleGuide {
	if g, ok := guides[style]; ok {
		return g
	}
	return guides[models.StyleEducational]
}

// ChooseSections picks one intro heading, between minN-2 and maxN-2 core
// headings (at least one, without replacement) and one outro heading.
func ChooseSections(rnd *rand.Rand, minN, maxN int) []string {
	lo, hi := max(1, minN-2), max(1, maxN-2)
	if hi < lo {
		hi = lo
	}
	count := min(lo+rnd.IntN(hi-lo+1), len(CoreSections))

	core := make([]string, len(CoreSections))
	copy(core, CoreSections)
	rnd.Shuffle(len(core), func(i, j int) { core[i], core[j] = core[j], core[i] })

	out := make([]string, 0, count+2)
	out = append(out, IntroSections[rnd.IntN(len(IntroSections))])
	out = append(out, core[:count]...)
	out = append(out, OutroSections[rnd.IntN(len(OutroSections))])
	return out
}

// Planning returns the planning prompt for the given headings.
func Planning(topic string, style models.Style, headings []string) string {
	return fmt.Sprintf(`You are an expert web content planner creating a structure for a website about: "%s".
Style: %s

Create a JSON structure with these fields:
- title: A compelling, clear title (max 70 characters)
- meta_description: An engaging description (50-160 chars)
- image_prompt: A detailed, vivid description for generating an image (20-50 words)
- sections: An array of objects based on these headings: %s
Each section object must have:
  - "heading": The exact heading from the list
  - "brief": A clear, specific 1-sentence description of what this section should cover

CRITICAL RULES:
1. Return ONLY valid JSON. No markdown, no explanations.
2. Use double quotes for all JSON strings.
Return the JSON now:`, topic, style, strings.Join(headings, ", "))
}

// Writing returns the writing prompt for a parsed plan.
func Writing(topic string, style models.Style, title string, sections []models.SectionSpec) string {
	g := guideFor(style)
	return fmt.Sprintf(`You are writing content for a website titled "%s" about %s.
STYLE: %s - %s
APPROACH: %s

Write content for the following sections. Each section must be %s words.

CRITICAL FORMATTING RULES:
- Start each section with: ### [Section Heading]
- Write the paragraph immediately after the heading
- Do NOT repeat the heading in the content

%s

Remember:
- Write in %s style throughout
- Stay focused on %s
Begin writing now:`, title, topic, style, g.instruction, g.approach, g.wordCount, SectionList(sections), style, topic)
}

// SectionList formats the planned sections for the writing prompt.
func SectionList(sections []models.SectionSpec) string {
	var b strings.Builder
	for i, s := range sections {
		heading := s.Heading
		if heading == "" {
			heading = "Section"
		}
		fmt.Fprintf(&b, "Section %d: ### %s\nPurpose: %s\n---\n", i+1, heading, s.Brief)
	}
	return strings.TrimSpace(b.String())
}
