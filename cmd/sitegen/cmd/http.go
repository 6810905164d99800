package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfenderov/sitegen/internal/server"
)

var httpAddr string

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Routes:
  POST /generate         Generate a batch of sites
  GET  /site/:id         Rendered site
  GET  /image/:filename  Site image
  GET  /logs             Generated sites and batches, newest first
  GET  /stats            Totals, style distribution and top topics
  GET  /ping             Liveness

Example:
  sitegen http --addr :8000`,
	RunE: runHTTP,
}

func init() {
	rootCmd.AddCommand(httpCmd)

	httpCmd.Flags().StringVar(&httpAddr, "addr", "", "Listen address (default from config)")
}

func runHTTP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	addr := cfg.Server.Addr
	if httpAddr != "" {
		addr = httpAddr
	}

	store, err := newStore(ctx, &cfg)
	if err != nil {
		return err
	}

	docEvents := make(chan any)
	orch, err := newOrchestrator(ctx, &cfg, store, docEvents)
	if err != nil {
		return err
	}

	// Logs and stats survive restarts through the stored records
	records, err := store.ListRecords(ctx)
	if err != nil {
		slog.Warn("failed to load stored sites", "error", err)
	} else {
		orch.History().Load(records)
		slog.Info("loaded stored sites", "count", len(records))
	}

	engine, err := newIndexer(ctx, &cfg)
	if err != nil {
		return err
	}
	go indexEvents(ctx, docEvents, engine, orch.History().Lookup)

	srv := server.New(orch, store, orch.History())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()
	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s\n", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
