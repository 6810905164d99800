// Package pipeline sequences planning, writing and assembly of every
// document of a batch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/mfenderov/sitegen/internal/events"
	"github.com/mfenderov/sitegen/internal/llm"
	"github.com/mfenderov/sitegen/internal/planner"
	"github.com/mfenderov/sitegen/internal/prompts"
	"github.com/mfenderov/sitegen/internal/sections"
	"github.com/mfenderov/sitegen/internal/similarity"
	"github.com/mfenderov/sitegen/internal/storage"
	"github.com/mfenderov/sitegen/internal/temperature"
	"github.com/mfenderov/sitegen/internal/titles"
	"github.com/mfenderov/sitegen/pkg/models"
)

// TextGenerator returns generated text, or "" when nothing usable came back.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, p llm.Params) string
}

// ImageGenerator returns PNG bytes for a prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Renderer turns a finished document into markup.
type Renderer interface {
	Render(style models.Style, in models.RenderInput) (string, error)
}

// Scorer computes the similarity matrix of a batch.
type Scorer interface {
	Score(ctx context.Context, entries []similarity.Entry) (*models.SimilarityMatrix, error)
}

// Heading counts of a generated plan, intro and outro included.
const (
	minSections = 3
	maxSections = 5
)

// Options configures an Orchestrator. Text is required; every other
// collaborator is optional.
type Options struct {
	Text      TextGenerator
	Images    ImageGenerator // nil skips the IMAGE state
	Renderer  Renderer
	Store     storage.Store
	Evaluator Scorer
	History   *History

	// Events receives DocumentAssembledEvent and BatchCompleteEvent values.
	Events chan<- any

	NearDuplicateThreshold float64

	// NewRand returns the random source of one run. Defaults to a
	// clock-seeded PCG.
	NewRand func() *rand.Rand
	Now     func() time.Time
}

// Orchestrator runs batches. It holds no run state and may serve
// several batches at once; each Run owns its own title set.
type Orchestrator struct {
	text      TextGenerator
	images    ImageGenerator
	renderer  Renderer
	store     storage.Store
	evaluator Scorer
	history   *History
	events    chan<- any
	threshold float64
	newRand   func() *rand.Rand
	now       func() time.Time
}

// New creates an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Text == nil {
		return nil, fmt.Errorf("text generator is required")
	}
	o := &Orchestrator{
		text:      opts.Text,
		images:    opts.Images,
		renderer:  opts.Renderer,
		store:     opts.Store,
		evaluator: opts.Evaluator,
		history:   opts.History,
		events:    opts.Events,
		threshold: opts.NearDuplicateThreshold,
		newRand:   opts.NewRand,
		now:       opts.Now,
	}
	if o.newRand == nil {
		o.newRand = func() *rand.Rand {
			seed := uint64(time.Now().UnixNano())
			return rand.New(rand.NewPCG(seed, seed>>1))
		}
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.history == nil {
		o.history = NewHistory()
	}
	return o, nil
}

// History returns the process-wide generation log.
func (o *Orchestrator) History() *History {
	return o.history
}

// Run validates req and generates req.Pages documents one after another.
// Only an invalid request or a cancelled context produce an error; a
// cancelled run still returns the documents assembled so far.
func (o *Orchestrator) Run(ctx context.Context, req models.Request) (*Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	run := newRun(ksuid.New().String(), req, o.newRand(), o.now())
	slog.Info("Starting batch generation",
		"run_id", run.ID,
		"topic", req.Topic,
		"pages", req.Pages,
		"style", req.Style,
		"randomize_temperature", req.RandomizeTemperature)

	var runErr error
	for i := range req.Pages {
		if err := ctx.Err(); err != nil {
			slog.Warn("Batch cancelled", "run_id", run.ID, "assembled", len(run.Documents), "error", err)
			runErr = err
			break
		}
		o.generate(ctx, run, i)
	}

	o.score(ctx, run)
	run.FinishedAt = o.now()

	o.history.AppendBatch(BatchEntry{
		RunID: run.ID,
		Topic: req.Topic,
		Count: len(run.Documents),
		Style: req.Style,
		At:    run.FinishedAt,
	})
	o.emit(ctx, events.BatchCompleteEvent{
		RunID:          run.ID,
		Topic:          req.Topic,
		Documents:      len(run.Documents),
		NearDuplicates: len(run.NearDuplicates),
		Duration:       run.Duration(),
		Errors:         run.Errors,
	})

	slog.Info("Batch generation complete",
		"run_id", run.ID,
		"documents", len(run.Documents),
		"near_duplicates", len(run.NearDuplicates),
		"errors", len(run.Errors),
		"duration", run.Duration())
	return run, runErr
}

// generate takes one document from SAMPLING_TEMPERATURE to ASSEMBLED.
// Every failure degrades to a fallback; nothing here aborts.
func (o *Orchestrator) generate(ctx context.Context, run *Run, index int) {
	req := run.Request
	doc := &models.Document{
		SiteID: models.NewSiteID(),
		Topic:  req.Topic,
		Style:  req.Style,
	}
	log := slog.With("run_id", run.ID, "site_id", doc.SiteID, "page", index+1)

	log.Debug("Document state", "state", StateSamplingTemperature)
	sampler := temperature.New(run.rnd)
	planTemp := sampler.Sample(req.Temperature, req.RandomizeTemperature, req.TemperatureMin, req.TemperatureMax)
	contentTemp := sampler.Content(planTemp, req.RandomizeTemperature)
	doc.TemperatureUsed = models.RoundTemperature(planTemp)
	doc.ContentTemperature = models.RoundTemperature(contentTemp)

	log.Debug("Document state", "state", StatePlanning, "temperature", doc.TemperatureUsed)
	headings := prompts.ChooseSections(run.rnd, minSections, maxSections)
	raw := o.text.Generate(ctx, prompts.Planning(req.Topic, req.Style, headings), llm.Params{
		Temperature: planTemp,
		TopP:        req.TopP,
		MaxTokens:   prompts.PlanMaxTokens,
		Schema:      llm.PlanSchema,
	})
	parsed := planner.Parse(raw, req.Topic, run.rnd)
	doc.Plan = parsed.Plan
	doc.PlanFallback = parsed.Outcome == planner.Fallback

	unique := titles.EnsureUnique(doc.Plan.Title, run.titles, run.rnd)
	doc.Plan.Title = unique.Title
	doc.TitleAdjusted = unique.Adjusted()
	run.titles[unique.Title] = struct{}{}

	if req.GenerateImage && o.images != nil {
		log.Debug("Document state", "state", StateImage)
		doc.ImagePath = o.image(ctx, run, doc)
	}

	log.Debug("Document state", "state", StateWriting, "temperature", doc.ContentTemperature)
	raw = o.text.Generate(ctx, prompts.Writing(req.Topic, req.Style, doc.Plan.Title, doc.Plan.Sections), llm.Params{
		Temperature: contentTemp,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	})

	log.Debug("Document state", "state", StateExtracting)
	extraction := sections.Extract(raw, doc.Plan.Sections)
	doc.Sections = extraction.Sections
	doc.SectionFallbacks = extraction.Fallbacks
	doc.CreatedAt = o.now()

	markup := o.assemble(ctx, run, doc)
	run.append(doc, markup)
	o.history.Append(doc)

	log.Info("Document state",
		"state", StateAssembled,
		"title", doc.Plan.Title,
		"plan", parsed.Outcome,
		"sections", len(doc.Sections),
		"section_fallbacks", len(doc.SectionFallbacks),
		"image", doc.ImagePath != "")

	o.emit(ctx, events.DocumentAssembledEvent{
		RunID:    run.ID,
		SiteID:   doc.SiteID,
		Index:    index,
		HTMLPath: doc.FilePath,
		Markup:   markup,
		At:       doc.CreatedAt,
	})
}

// image returns the stored image file name, or "" when the document goes
// without one.
func (o *Orchestrator) image(ctx context.Context, run *Run, doc *models.Document) string {
	if o.store == nil {
		slog.Warn("No artifact store, skipping image", "site_id", doc.SiteID)
		return ""
	}
	png, err := o.images.Generate(ctx, doc.Plan.ImagePrompt)
	if err != nil {
		slog.Warn("Image generation failed, continuing without image", "site_id", doc.SiteID, "error", err)
		return ""
	}
	name, err := o.store.PutImage(ctx, doc.SiteID, png)
	if err != nil {
		run.fail(fmt.Errorf("failed to store image of %s: %w", doc.SiteID, err))
		return ""
	}
	return name
}

// assemble renders and persists doc, returning its markup.
func (o *Orchestrator) assemble(ctx context.Context, run *Run, doc *models.Document) string {
	var markup string
	if o.renderer != nil {
		var err error
		markup, err = o.renderer.Render(doc.Style, doc.RenderInput())
		if err != nil {
			run.fail(fmt.Errorf("failed to render %s: %w", doc.SiteID, err))
		}
	}
	if o.store == nil {
		return markup
	}

	if markup != "" {
		path, err := o.store.PutSite(ctx, doc.SiteID, markup)
		if err != nil {
			run.fail(fmt.Errorf("failed to store site %s: %w", doc.SiteID, err))
		} else {
			doc.FilePath = path
		}
	}
	if err := o.store.PutRecord(ctx, doc); err != nil {
		run.fail(fmt.Errorf("failed to store record %s: %w", doc.SiteID, err))
	}
	return markup
}

// score runs the similarity evaluator over the run and flags near duplicates.
func (o *Orchestrator) score(ctx context.Context, run *Run) {
	if o.evaluator == nil || len(run.Documents) < 2 {
		return
	}
	matrix, err := o.evaluator.Score(ctx, run.entries())
	if err != nil {
		run.fail(fmt.Errorf("failed to score similarity: %w", err))
		return
	}
	run.Similarity = matrix
	if matrix == nil || o.threshold <= 0 {
		return
	}
	run.NearDuplicates = matrix.NearDuplicates(o.threshold)
	for _, p := range run.NearDuplicates {
		slog.Warn("Near-duplicate documents", "run_id", run.ID, "a", p.A, "b", p.B, "score", p.Score)
	}
}

func (o *Orchestrator) emit(ctx context.Context, ev any) {
	if o.events == nil {
		return
	}
	select {
	case o.events <- ev:
	case <-ctx.Done():
	}
}
