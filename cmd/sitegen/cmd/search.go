package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/sitegen/internal/elasticsearch"
	"github.com/mfenderov/sitegen/pkg/models"
)

var (
	searchLimit  int
	searchStyle  string
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed sites",
	Long: `Search the indexed sites. With embeddings enabled the query is also
matched by vector similarity.

Examples:
  # Basic search
  sitegen search "gradient descent"

  # Only technical sites
  sitegen search "ownership" --style technical --limit 5

  # JSON output for scripting
  sitegen search "sourdough" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchStyle, "style", "", "Only return sites of this style")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	query := args[0]
	cfg := GetConfig()

	esClient, err := newESClient(&cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	if esClient == nil {
		return fmt.Errorf("elasticsearch is disabled; set elasticsearch.enabled or SITEGEN_ELASTICSEARCH_ENABLED")
	}

	opts := elasticsearch.SearchOptions{Limit: searchLimit}
	if searchStyle != "" {
		style, ok := models.ParseStyle(searchStyle)
		if !ok {
			return fmt.Errorf("unknown style %q", searchStyle)
		}
		opts.Style = style
	}

	// Hybrid search when the query can be embedded
	embedder, err := newEmbedder(&cfg)
	if err != nil {
		return err
	}
	if embedder != nil {
		vec, err := embedder.Embed(ctx, query)
		if err != nil {
			slog.Warn("failed to embed query, using text search only", "error", err)
		} else {
			opts.Embedding = vec
		}
	}

	sites, err := esClient.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(sites) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if searchFormat == "json" {
		output, err := json.MarshalIndent(sites, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(sites))
	for i, site := range sites {
		fmt.Printf("─── Result %d ───\n", i+1)
		fmt.Printf("Title:   %s\n", site.Title)
		fmt.Printf("Site:    /site/%s\n", site.SiteID)
		fmt.Printf("Style:   %s  Topic: %s\n", site.Style, site.Topic)

		content := []rune(site.Content)
		if len(content) > 500 {
			content = append(content[:500], []rune("...")...)
		}
		fmt.Printf("Content:\n%s\n\n", string(content))
	}
	return nil
}
