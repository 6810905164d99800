// Package planner turns raw planning output into a models.Plan.
package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/mfenderov/sitegen/pkg/models"
)

// Outcome tags how a Plan was obtained.
type Outcome int

const (
	// Parsed means the plan came from the generator output.
	Parsed Outcome = iota
	// Fallback means the output was unusable and the default plan was built.
	Fallback
)

func (o Outcome) String() string {
	if o == Fallback {
		return "fallback"
	}
	return "parsed"
}

// Result is the outcome of Parse. Reason is set for Fallback only.
type Result struct {
	Plan    models.Plan
	Outcome Outcome
	Reason  string
}

var (
	fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

	errEmpty      = errors.New("empty generator output")
	errNoSections = errors.New("plan has no usable sections")
)

// Parse never fails: malformed or empty output yields the fallback plan.
func Parse(raw, topic string, rnd *rand.Rand) Result {
	plan, err := decode(raw)
	if err != nil {
		slog.Warn("Plan parsing failed, using fallback structure", "topic", topic, "error", err)
		return Result{
			Plan:    FallbackPlan(topic, rnd),
			Outcome: Fallback,
			Reason:  err.Error(),
		}
	}

	if strings.TrimSpace(plan.Title) == "" {
		plan.Title = topic + " Guide"
	}
	if strings.TrimSpace(plan.MetaDescription) == "" {
		plan.MetaDescription = "Learn about " + topic
	}
	if strings.TrimSpace(plan.ImagePrompt) == "" {
		plan.ImagePrompt = "Professional illustration of " + topic
	}
	slog.Debug("Plan parsed", "title", plan.Title, "sections", len(plan.Sections))
	return Result{Plan: plan, Outcome: Parsed}
}

func decode(raw string) (models.Plan, error) {
	payload := strings.TrimSpace(raw)
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		payload = strings.TrimSpace(m[1])
	}
	if payload == "" {
		return models.Plan{}, errEmpty
	}

	var plan models.Plan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return models.Plan{}, fmt.Errorf("failed to decode plan: %w", err)
	}
	if !plan.Valid() {
		return models.Plan{}, errNoSections
	}
	for i := range plan.Sections {
		plan.Sections[i].Heading = strings.TrimSpace(plan.Sections[i].Heading)
	}
	return plan, nil
}

// FallbackPlan is the deterministic default outline for topic. Only the
// 8-character title suffix depends on rnd.
func FallbackPlan(topic string, rnd *rand.Rand) models.Plan {
	return models.Plan{
		Title:           fmt.Sprintf("%s — Comprehensive Guide %s", topic, models.RandomSuffix(rnd, 8)),
		MetaDescription: fmt.Sprintf("Discover everything about %s. Expert insights and practical knowledge.", topic),
		ImagePrompt:     "Professional illustration representing " + topic,
		Sections: []models.SectionSpec{
			{Heading: "Introduction", Brief: "Overview of " + topic},
			{Heading: "Key Features", Brief: "Main aspects of " + topic},
			{Heading: "Summary", Brief: "Conclusions about " + topic},
		},
	}
}
