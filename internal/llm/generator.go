package llm

import (
	"context"
	"log/slog"
	"time"
)

// Generator wraps a Completer so that failures surface as empty output.
// Callers route "" through the same fallback paths as unparseable text.
type Generator struct {
	completer Completer
}

// NewGenerator wraps c. A nil completer makes every call return "".
func NewGenerator(c Completer) *Generator {
	return &Generator{completer: c}
}

// Generate returns the generated text, or "" on any failure.
func (g *Generator) Generate(ctx context.Context, prompt string, p Params) string {
	if g == nil || g.completer == nil {
		slog.Warn("No text generator configured")
		return ""
	}

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.Debug("Calling text generator",
			"prompt_tokens", CountTokens(prompt),
			"temperature", p.Temperature,
			"top_p", p.TopP,
			"max_tokens", p.MaxTokens,
			"structured", p.Schema != nil)
	}

	start := time.Now()
	out, err := g.completer.Complete(ctx, prompt, p)
	if err != nil {
		slog.Error("Inference error", "error", err, "duration", time.Since(start))
		return ""
	}
	slog.Info("Inference successful", "chars", len(out), "duration", time.Since(start))
	return out
}
