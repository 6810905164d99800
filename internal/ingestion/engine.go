package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/sitegen/internal/processor"
	"github.com/mfenderov/sitegen/internal/storage"
	"github.com/mfenderov/sitegen/pkg/models"
)

// Index is the search index the engine writes to.
type Index interface {
	CreateIndex(ctx context.Context) error
	IndexSite(ctx context.Context, site models.IndexedSite) error
	Refresh(ctx context.Context) error
}

// Embedder produces the dense vector stored with each site.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result holds reindex execution results.
type Result struct {
	DocsIndexed int
	Duration    time.Duration
	Errors      []string
}

// Engine converts generated sites to Markdown and indexes them.
type Engine struct {
	store     storage.Store
	index     Index
	processor *processor.Processor
	embedder  Embedder // nil if embeddings disabled
}

// New creates a new ingestion engine. store may be nil when only
// IndexDocument is used.
func New(store storage.Store, index Index, embedder Embedder) *Engine {
	return &Engine{
		store:     store,
		index:     index,
		processor: processor.New(),
		embedder:  embedder,
	}
}

// IndexDocument indexes one assembled document. markup is its rendered
// page; without it the section text is indexed.
func (e *Engine) IndexDocument(ctx context.Context, doc *models.Document, runID, markup string) error {
	content := doc.Text()
	if markup != "" {
		md, err := e.processor.Convert(markup)
		if err != nil {
			slog.Warn("failed to convert site to markdown", "site_id", doc.SiteID, "error", err)
		} else {
			content = md
		}
	}

	site := models.NewIndexedSite(doc, runID, content)

	// Embedding failures still index the site for BM25
	if e.embedder != nil {
		embedding, err := e.embedder.Embed(ctx, content)
		if err != nil {
			slog.Warn("failed to generate embedding", "site_id", doc.SiteID, "error", err)
		} else {
			site.Embedding = embedding
		}
	}

	slog.Debug("indexing site", "site_id", site.SiteID, "title", site.Title, "headings", len(site.Headings))
	if err := e.index.IndexSite(ctx, site); err != nil {
		return fmt.Errorf("failed to index site %s: %w", doc.SiteID, err)
	}
	return nil
}

// Reindex reads every stored record and its page and indexes them.
func (e *Engine) Reindex(ctx context.Context) (*Result, error) {
	if e.store == nil {
		return nil, fmt.Errorf("artifact store is required")
	}
	start := time.Now()
	result := &Result{}

	if err := e.index.CreateIndex(ctx); err != nil {
		return nil, err
	}

	records, err := e.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("found sites to index", "count", len(records))

	for _, doc := range records {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, "context cancelled")
			break
		}

		markup, err := e.store.GetSite(ctx, doc.SiteID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		if err := e.IndexDocument(ctx, doc, "", markup); err != nil {
			slog.Error("failed to index site", "site_id", doc.SiteID, "error", err)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.DocsIndexed++
	}

	// Refresh index to make sites searchable immediately
	if err := e.index.Refresh(ctx); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	result.Duration = time.Since(start)
	slog.Info("reindex complete",
		"docs_indexed", result.DocsIndexed,
		"duration", result.Duration,
		"errors", len(result.Errors))
	return result, nil
}
