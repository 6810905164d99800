package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/sitegen/internal/markdown"
	"github.com/mfenderov/sitegen/internal/processor"
	"github.com/mfenderov/sitegen/internal/scraper"
	"github.com/mfenderov/sitegen/internal/similarity"
	"github.com/mfenderov/sitegen/internal/storage"
	"github.com/mfenderov/sitegen/pkg/models"
)

var (
	evalSites     []string
	evalURLs      []string
	evalAll       bool
	evalLexical   bool
	evalThreshold float64
	evalFormat    string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [file...]",
	Short: "Compute the similarity matrix of sites",
	Long: `Score how similar a set of pages are to each other. Pages can be local
HTML, Markdown or text files, stored sites, or URLs.

Examples:
  # Every stored site
  sitegen evaluate --all

  # Two stored sites and a local file
  sitegen evaluate --site 3f2a... --site 9c1b... ./draft.md

  # Live pages
  sitegen evaluate --url https://example.com/a --url https://example.com/b`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringSliceVar(&evalSites, "site", nil, "Stored site id (repeatable)")
	evaluateCmd.Flags().StringSliceVar(&evalURLs, "url", nil, "URL to fetch (repeatable)")
	evaluateCmd.Flags().BoolVar(&evalAll, "all", false, "Evaluate every stored site")
	evaluateCmd.Flags().BoolVar(&evalLexical, "lexical", true, "Include the lexical overlap matrix")
	evaluateCmd.Flags().Float64Var(&evalThreshold, "threshold", 0, "Near-duplicate threshold (default from config)")
	evaluateCmd.Flags().StringVar(&evalFormat, "format", "table", "Output format: table, json or yaml")
}

type evaluation struct {
	Similarity     *models.SimilarityMatrix `json:"similarity" yaml:"similarity"`
	NearDuplicates []models.DuplicatePair   `json:"near_duplicates,omitempty" yaml:"near_duplicates,omitempty"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	var entries []similarity.Entry

	if evalAll || len(evalSites) > 0 {
		store, err := newStore(ctx, &cfg)
		if err != nil {
			return err
		}
		stored, err := storedEntries(ctx, store, evalSites, evalAll)
		if err != nil {
			return err
		}
		entries = append(entries, stored...)
	}

	for _, path := range args {
		entry, err := fileEntry(path)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	if len(evalURLs) > 0 {
		s := scraper.New(scraper.Config{
			Timeout:   cfg.Scraper.Timeout,
			UserAgent: cfg.Scraper.UserAgent,
		})
		pages, err := s.Fetch(ctx, evalURLs)
		if err != nil {
			return fmt.Errorf("failed to fetch pages: %w", err)
		}
		for _, p := range pages {
			entries = append(entries, pageEntry(p.URL, p.ContentType, p.Content))
		}
	}

	if len(entries) < 2 {
		return fmt.Errorf("need at least 2 pages to compare, got %d", len(entries))
	}

	evaluator, err := newEvaluator(&cfg, evalLexical)
	if err != nil {
		return err
	}
	matrix, err := evaluator.Score(ctx, entries)
	if err != nil {
		return fmt.Errorf("failed to score pages: %w", err)
	}

	threshold := evalThreshold
	if threshold == 0 {
		threshold = cfg.Generation.NearDuplicateThreshold
	}
	result := evaluation{Similarity: matrix}
	if matrix != nil && threshold > 0 {
		result.NearDuplicates = matrix.NearDuplicates(threshold)
	}

	if evalFormat == "table" {
		printSimilarity(os.Stdout, result.Similarity, result.NearDuplicates)
		return nil
	}
	return writeStructured(os.Stdout, evalFormat, result)
}

// storedEntries loads the named sites, or every stored site when all is set.
func storedEntries(ctx context.Context, store storage.Store, ids []string, all bool) ([]similarity.Entry, error) {
	var docs []*models.Document
	if all {
		records, err := store.ListRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sites: %w", err)
		}
		docs = records
	} else {
		for _, id := range ids {
			doc, err := store.GetRecord(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to load site %s: %w", id, err)
			}
			docs = append(docs, doc)
		}
	}

	entries := make([]similarity.Entry, 0, len(docs))
	for _, doc := range docs {
		markup, err := store.GetSite(ctx, doc.SiteID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if markup == "" {
			slog.Debug("site page missing, using section text", "site_id", doc.SiteID)
		}
		entries = append(entries, similarity.Entry{
			Label:  doc.Title(),
			SiteID: doc.SiteID,
			Markup: markup,
			Text:   doc.Text(),
		})
	}
	return entries, nil
}

func fileEntry(path string) (similarity.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return similarity.Entry{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	entry := pageEntry(path, "", string(data))
	if entry.Label == path {
		entry.Label = filepath.Base(path)
	}
	return entry, nil
}

// pageEntry classifies content and builds the entry the evaluator expects:
// HTML as markup, Markdown rendered to HTML, anything else as plain text.
// HTML pages are labelled by their <title> when they have one.
func pageEntry(name, contentType, content string) similarity.Entry {
	entry := similarity.Entry{Label: name}
	switch markdown.Classify(name, contentType, content) {
	case markdown.KindHTML:
		entry.Markup = content
		if title := processor.New().ExtractTitle(content); title != "" {
			entry.Label = title
		}
	case markdown.KindMarkdown:
		html, err := markdown.ToHTML(content)
		if err != nil {
			slog.Warn("failed to render markdown", "name", name, "error", err)
			entry.Text = content
			break
		}
		entry.Markup = html
	default:
		entry.Text = content
	}
	return entry
}
