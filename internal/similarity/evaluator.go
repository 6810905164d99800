// Package similarity scores how alike the documents of a batch are.
package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/mfenderov/sitegen/internal/processor"
	"github.com/mfenderov/sitegen/pkg/models"
)

// Embedder turns sentence text into a fixed-size vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// BatchEmbedder embeds many texts in one call. Vectors follow input order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Entry is one document to score. Markup is the rendered page; Text is
// used as-is when Markup is empty.
type Entry struct {
	Label  string
	SiteID string
	Markup string
	Text   string
}

// Evaluator computes the pairwise cosine similarity matrix of a batch.
type Evaluator struct {
	embedder    Embedder
	processor   *processor.Processor
	concurrency int
	lexical     bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithConcurrency bounds parallel embedding calls. Default 1.
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLexical adds the word-level overlap matrix to the result.
func WithLexical(enabled bool) Option {
	return func(e *Evaluator) { e.lexical = enabled }
}

// NewEvaluator creates an Evaluator. A nil embedder uses the offline
// hashing embedder.
func NewEvaluator(embedder Embedder, opts ...Option) *Evaluator {
	if embedder == nil {
		embedder = NewHashEmbedder(DefaultDims)
	}
	e := &Evaluator{
		embedder:    embedder,
		processor:   processor.New(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score returns nil when fewer than two entries have non-empty text.
// Rows follow the order of the qualifying entries.
func (e *Evaluator) Score(ctx context.Context, entries []Entry) (*models.SimilarityMatrix, error) {
	var (
		labels []string
		ids    []string
		texts  []string
	)
	for _, en := range entries {
		text := en.Text
		if en.Markup != "" {
			text = e.processor.ExtractText(en.Markup)
		}
		if text == "" {
			slog.Debug("Skipping document without text", "label", en.Label)
			continue
		}
		labels = append(labels, en.Label)
		ids = append(ids, en.SiteID)
		texts = append(texts, text)
	}
	if len(texts) < 2 {
		slog.Info("Not enough documents to compare", "qualifying", len(texts))
		return nil, nil
	}

	vectors, err := e.embed(ctx, labels, texts)
	if err != nil {
		return nil, err
	}

	m := &models.SimilarityMatrix{
		Labels:   labels,
		SiteIDs:  ids,
		Scores:   pairwise(len(texts), func(i, j int) float64 { return Cosine(vectors[i], vectors[j]) }),
		Embedder: e.embedder.Name(),
	}
	if e.lexical {
		m.Lexical = pairwise(len(texts), func(i, j int) float64 { return Lexical(texts[i], texts[j]) })
	}
	return m, nil
}

// embed uses one batched call when the embedder supports it, otherwise
// up to concurrency parallel calls.
func (e *Evaluator) embed(ctx context.Context, labels, texts []string) ([][]float32, error) {
	if b, ok := e.embedder.(BatchEmbedder); ok {
		vectors, err := b.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch: %w", err)
		}
		return vectors, nil
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			v, err := e.embedder.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("failed to embed %q: %w", labels[i], err)
			}
			vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// pairwise builds a symmetric n×n matrix with 1.0 on the diagonal.
func pairwise(n int, score func(i, j int) float64) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		out[i][i] = 1.0
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := score(i, j)
			out[i][j], out[j][i] = s, s
		}
	}
	return out
}

// Cosine returns the cosine similarity of a and b, or 0 when either is
// empty, zero or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
