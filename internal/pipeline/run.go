package pipeline

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/mfenderov/sitegen/internal/similarity"
	"github.com/mfenderov/sitegen/pkg/models"
)

// State is a step of the per-document state machine.
type State string

const (
	StateSamplingTemperature State = "SAMPLING_TEMPERATURE"
	StatePlanning            State = "PLANNING"
	StateImage               State = "IMAGE"
	StateWriting             State = "WRITING"
	StateExtracting          State = "EXTRACTING"
	StateAssembled           State = "ASSEMBLED"
)

// Run is the context of one batch. Documents and the title set are only
// touched by the goroutine executing the batch.
type Run struct {
	ID             string                   `json:"run_id" yaml:"run_id"`
	Request        models.Request           `json:"request" yaml:"request"`
	Documents      []*models.Document       `json:"documents" yaml:"documents"`
	Similarity     *models.SimilarityMatrix `json:"similarity,omitempty" yaml:"similarity,omitempty"`
	NearDuplicates []models.DuplicatePair   `json:"near_duplicates,omitempty" yaml:"near_duplicates,omitempty"`
	Errors         []string                 `json:"errors,omitempty" yaml:"errors,omitempty"`
	StartedAt      time.Time                `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time                `json:"finished_at" yaml:"finished_at"`

	titles map[string]struct{}
	markup []string
	rnd    *rand.Rand
}

func newRun(id string, req models.Request, rnd *rand.Rand, now time.Time) *Run {
	return &Run{
		ID:        id,
		Request:   req,
		StartedAt: now,
		titles:    make(map[string]struct{}),
		rnd:       rnd,
	}
}

// Duration of the batch, zero until it finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Titles returns the final titles in document order.
func (r *Run) Titles() []string {
	out := make([]string, len(r.Documents))
	for i, d := range r.Documents {
		out[i] = d.Plan.Title
	}
	return out
}

// Markup returns the rendered page of the i-th document.
func (r *Run) Markup(i int) string {
	if i < 0 || i >= len(r.markup) {
		return ""
	}
	return r.markup[i]
}

func (r *Run) append(doc *models.Document, markup string) {
	r.Documents = append(r.Documents, doc)
	r.markup = append(r.markup, markup)
}

func (r *Run) fail(err error) {
	slog.Error("Batch step failed", "run_id", r.ID, "error", err)
	r.Errors = append(r.Errors, err.Error())
}

func (r *Run) entries() []similarity.Entry {
	out := make([]similarity.Entry, len(r.Documents))
	for i, d := range r.Documents {
		out[i] = similarity.Entry{
			Label:  d.Plan.Title,
			SiteID: d.SiteID,
			Markup: r.markup[i],
			Text:   d.Text(),
		}
	}
	return out
}
