package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/sitegen/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server for site generation.

The server communicates via stdio and provides these tools:
  - generate_sites: Generate a batch of sites about a topic
  - get_site: Get a stored site as Markdown, HTML or its record
  - list_sites: List the most recent stored sites
  - search_sites: Search indexed sites (when Elasticsearch is enabled)

Example:
  sitegen serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	store, err := newStore(ctx, &cfg)
	if err != nil {
		return err
	}

	docEvents := make(chan any)
	orch, err := newOrchestrator(ctx, &cfg, store, docEvents)
	if err != nil {
		return err
	}

	engine, err := newIndexer(ctx, &cfg)
	if err != nil {
		return err
	}
	go indexEvents(ctx, docEvents, engine, orch.History().Lookup)

	// Search is only offered when the index is enabled
	var searcher mcp.Searcher
	es, err := newESClient(&cfg)
	if err != nil {
		return err
	}
	if es != nil {
		searcher = es
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
	}, orch, store, searcher)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
