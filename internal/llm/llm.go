// Package llm provides the text generators used by the pipeline.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Params are the sampling parameters of one call.
type Params struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	// Schema requests structured JSON output when the provider supports it.
	Schema *Schema
}

// Completer is a text generation backend.
type Completer interface {
	Complete(ctx context.Context, prompt string, p Params) (string, error)
}

// Provider names accepted by NewCompleter.
const (
	ProviderDMR    = "dmr"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds LLM client configuration.
type Config struct {
	Provider   string
	SocketPath string // Unix socket path for Docker Model Runner
	BaseURL    string // OpenAI-compatible endpoint, e.g. http://localhost:8080/v1
	APIKey     string
	Model      string        // Model name (e.g., "ai/gemma3")
	Timeout    time.Duration // zero means no client-side timeout
}

// NewCompleter builds the provider selected by config.Provider.
func NewCompleter(ctx context.Context, config Config) (Completer, error) {
	switch config.Provider {
	case "", ProviderDMR:
		return New(config)
	case ProviderOpenAI:
		return NewOpenAI(config)
	case ProviderGemini:
		return NewGemini(ctx, config)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", config.Provider)
	}
}
