package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mfenderov/sitegen/internal/config"
	"github.com/mfenderov/sitegen/internal/elasticsearch"
	"github.com/mfenderov/sitegen/internal/embeddings"
	"github.com/mfenderov/sitegen/internal/events"
	"github.com/mfenderov/sitegen/internal/imagegen"
	"github.com/mfenderov/sitegen/internal/ingestion"
	"github.com/mfenderov/sitegen/internal/llm"
	"github.com/mfenderov/sitegen/internal/pipeline"
	"github.com/mfenderov/sitegen/internal/render"
	"github.com/mfenderov/sitegen/internal/similarity"
	"github.com/mfenderov/sitegen/internal/storage"
	"github.com/mfenderov/sitegen/pkg/models"
)

// newStore opens the configured artifact store.
func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "", config.BackendLocal:
		return storage.NewLocal(cfg.Storage.Dir)
	case config.BackendS3:
		client, err := storage.New(storage.Config{
			Endpoint:        cfg.Storage.Endpoint,
			Bucket:          cfg.Storage.Bucket,
			Prefix:          cfg.Storage.Prefix,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UseSSL:          cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newEmbedder returns the sentence embeddings client, or nil when
// embeddings are disabled.
func newEmbedder(cfg *config.Config) (similarity.Embedder, error) {
	if !cfg.Embeddings.Enabled {
		return nil, nil
	}
	client, err := embeddings.New(embeddings.Config{
		SocketPath: cfg.Embeddings.SocketPath,
		BaseURL:    cfg.Embeddings.BaseURL,
		APIKey:     cfg.Embeddings.APIKey,
		Model:      cfg.Embeddings.Model,
		Timeout:    cfg.Embeddings.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings client: %w", err)
	}
	slog.Info("embeddings enabled", "model", cfg.Embeddings.Model)
	return client, nil
}

// newEvaluator uses the configured embedder, falling back to the offline
// hashing embedder.
func newEvaluator(cfg *config.Config, lexical bool) (*similarity.Evaluator, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	return similarity.NewEvaluator(embedder,
		similarity.WithConcurrency(cfg.Generation.SimilarityConcurrency),
		similarity.WithLexical(lexical),
	), nil
}

// newESClient returns nil when the search index is disabled.
func newESClient(cfg *config.Config) (*elasticsearch.Client, error) {
	if !cfg.Elasticsearch.Enabled {
		return nil, nil
	}
	dims := 0
	if cfg.Embeddings.Enabled {
		dims = embeddings.Dimensions(cfg.Embeddings.Model)
	}
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
		Dims:      dims,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return client, nil
}

// newOrchestrator wires every generation collaborator from cfg. events
// may be nil.
func newOrchestrator(ctx context.Context, cfg *config.Config, store storage.Store, events chan<- any) (*pipeline.Orchestrator, error) {
	completer, err := llm.NewCompleter(ctx, llm.Config{
		Provider:   cfg.LLM.Provider,
		SocketPath: cfg.LLM.SocketPath,
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		Timeout:    cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	slog.Info("text generation", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	evaluator, err := newEvaluator(cfg, cfg.Generation.Lexical)
	if err != nil {
		return nil, err
	}

	opts := pipeline.Options{
		Text:                   llm.NewGenerator(completer),
		Renderer:               renderer,
		Store:                  store,
		Evaluator:              evaluator,
		Events:                 events,
		NearDuplicateThreshold: cfg.Generation.NearDuplicateThreshold,
	}

	if cfg.Images.Enabled {
		images, err := imagegen.New(imagegen.Config{
			BaseURL: cfg.Images.BaseURL,
			APIKey:  cfg.Images.APIKey,
			Model:   cfg.Images.Model,
			Size:    cfg.Images.Size,
			Timeout: cfg.Images.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create image client: %w", err)
		}
		opts.Images = images
		slog.Info("image generation enabled", "model", cfg.Images.Model)
	}

	if seed := cfg.Generation.Seed; seed != 0 {
		opts.NewRand = func() *rand.Rand { return rand.New(rand.NewPCG(seed, seed)) }
	}

	return pipeline.New(opts)
}

// newIndexer returns an ingestion engine writing to Elasticsearch, or nil
// when the index is disabled.
func newIndexer(ctx context.Context, cfg *config.Config) (*ingestion.Engine, error) {
	es, err := newESClient(cfg)
	if err != nil || es == nil {
		return nil, err
	}
	if err := es.CreateIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	return ingestion.New(nil, es, embedder), nil
}

// indexEvents drains ch until it is closed. Assembled documents are
// indexed when engine is non-nil. Returns the number of indexed sites.
func indexEvents(ctx context.Context, ch <-chan any, engine *ingestion.Engine, lookup func(string) (*models.Document, bool)) int {
	indexed := 0
	for ev := range ch {
		switch e := ev.(type) {
		case events.DocumentAssembledEvent:
			slog.Debug("document assembled", "run_id", e.RunID, "site_id", e.SiteID, "index", e.Index, "path", e.HTMLPath)
			if engine == nil {
				continue
			}
			doc, ok := lookup(e.SiteID)
			if !ok {
				continue
			}
			if err := engine.IndexDocument(ctx, doc, e.RunID, e.Markup); err != nil {
				slog.Warn("failed to index site", "site_id", e.SiteID, "error", err)
				continue
			}
			indexed++
		case events.BatchCompleteEvent:
			slog.Info("batch complete",
				"run_id", e.RunID,
				"topic", e.Topic,
				"documents", e.Documents,
				"near_duplicates", e.NearDuplicates,
				"duration", e.Duration,
				"errors", len(e.Errors),
			)
		}
	}
	return indexed
}
