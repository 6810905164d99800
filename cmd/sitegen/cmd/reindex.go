package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/sitegen/internal/ingestion"
)

var reindexRecreate bool

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from stored sites",
	Long: `Read every stored site record and page and index it in Elasticsearch.

Examples:
  # Index stored sites, keeping existing documents
  sitegen reindex

  # Drop and recreate the index first
  sitegen reindex --recreate`,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)

	reindexCmd.Flags().BoolVar(&reindexRecreate, "recreate", false, "Delete the index before indexing")
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	es, err := newESClient(&cfg)
	if err != nil {
		return err
	}
	if es == nil {
		return fmt.Errorf("elasticsearch is disabled; set elasticsearch.enabled or SITEGEN_ELASTICSEARCH_ENABLED")
	}
	if !es.Ping(ctx) {
		return fmt.Errorf("elasticsearch is not reachable at %v", cfg.Elasticsearch.Addresses)
	}

	store, err := newStore(ctx, &cfg)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(&cfg)
	if err != nil {
		return err
	}

	if reindexRecreate {
		fmt.Printf("Deleting index %s\n", cfg.Elasticsearch.Index)
		if err := es.DeleteIndex(ctx); err != nil {
			return fmt.Errorf("failed to delete index: %w", err)
		}
	}

	engine := ingestion.New(store, es, embedder)
	result, err := engine.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	fmt.Printf("Docs indexed: %d, Duration: %v\n", result.DocsIndexed, result.Duration)
	for _, e := range result.Errors {
		fmt.Printf("  Warning: %s\n", e)
	}
	return nil
}
