package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/sitegen/internal/ingestion"
	"github.com/mfenderov/sitegen/pkg/models"
)

var (
	genRequest = models.DefaultRequest()
	genStyle   string
	genFormat  string
	genNoIndex bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of sites about a topic",
	Long: `Plan, write and render a batch of single-page sites about a topic, then
print the pairwise similarity of the batch.

Examples:
  # Three educational pages
  sitegen generate --topic "Machine Learning" --pages 3

  # Randomized temperature per page, JSON report
  sitegen generate --topic "Rust ownership" --pages 5 --randomize --format json

  # Without images
  sitegen generate --topic "Sourdough" --style casual --image=false`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.StringVar(&genRequest.Topic, "topic", "", "Topic of the sites (required)")
	f.IntVarP(&genRequest.Pages, "pages", "n", genRequest.Pages, "Number of sites to generate")
	f.StringVar(&genStyle, "style", string(genRequest.Style), "Presentation style")
	f.IntVar(&genRequest.MaxTokens, "max-tokens", genRequest.MaxTokens, "Token limit for the writing step")
	f.Float64Var(&genRequest.Temperature, "temperature", genRequest.Temperature, "Sampling temperature")
	f.Float64Var(&genRequest.TopP, "top-p", genRequest.TopP, "Nucleus sampling probability")
	f.BoolVar(&genRequest.GenerateImage, "image", genRequest.GenerateImage, "Generate a hero image when image generation is enabled")
	f.BoolVar(&genRequest.RandomizeTemperature, "randomize", false, "Sample a temperature per site")
	f.Float64Var(&genRequest.TemperatureMin, "temperature-min", genRequest.TemperatureMin, "Lower bound of randomized temperatures")
	f.Float64Var(&genRequest.TemperatureMax, "temperature-max", genRequest.TemperatureMax, "Upper bound of randomized temperatures")
	f.StringVar(&genFormat, "format", "text", "Output format: text, json or yaml")
	f.BoolVar(&genNoIndex, "no-index", false, "Skip indexing even when Elasticsearch is enabled")
	generateCmd.MarkFlagRequired("topic")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	req := genRequest
	req.Style = models.Style(genStyle)

	store, err := newStore(ctx, &cfg)
	if err != nil {
		return err
	}

	// Event channel for assembled documents
	docEvents := make(chan any)
	orch, err := newOrchestrator(ctx, &cfg, store, docEvents)
	if err != nil {
		return err
	}

	var engine *ingestion.Engine
	if !genNoIndex {
		engine, err = newIndexer(ctx, &cfg)
		if err != nil {
			return err
		}
	}

	done := make(chan struct{})
	var indexed int

	// Start indexing worker (consumer)
	go func() {
		defer close(done)
		indexed = indexEvents(ctx, docEvents, engine, orch.History().Lookup)
	}()

	// Generate (producer)
	run, runErr := orch.Run(ctx, req)

	// Close channel and wait for indexing to complete
	close(docEvents)
	<-done

	if runErr != nil && run == nil {
		return runErr
	}

	if genFormat == "text" {
		printRun(os.Stdout, run)
		if engine != nil {
			fmt.Printf("\nIndexed %d site(s)\n", indexed)
		}
	} else if err := writeStructured(os.Stdout, genFormat, run); err != nil {
		return err
	}
	return runErr
}
