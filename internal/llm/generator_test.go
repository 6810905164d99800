package llm

import (
	"context"
	"errors"
	"testing"
)

type stubCompleter struct {
	out    string
	err    error
	calls  int
	params Params
}

func (s *stubCompleter) Complete(_ context.Context, _ string, p Params) (string, error) {
	s.calls++
	s.params = p
	return s.out, s.err
}

func TestGenerator_Generate(t *testing.T) {
	tests := []struct {
		name string
		stub *stubCompleter
		want string
	}{
		{"success", &stubCompleter{out: "hello"}, "hello"},
		{"failure becomes empty", &stubCompleter{out: "partial", err: errors.New("quota exceeded")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.stub)

			got := g.Generate(context.Background(), "prompt", Params{Temperature: 0.5, MaxTokens: 10})

			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
			if tt.stub.calls != 1 {
				t.Errorf("calls = %d, want 1", tt.stub.calls)
			}
			if tt.stub.params.MaxTokens != 10 {
				t.Errorf("params not forwarded: %+v", tt.stub.params)
			}
		})
	}
}

func TestGenerator_NilCompleter(t *testing.T) {
	if got := NewGenerator(nil).Generate(context.Background(), "p", Params{}); got != "" {
		t.Errorf("Generate() = %q, want empty", got)
	}
	var g *Generator
	if got := g.Generate(context.Background(), "p", Params{}); got != "" {
		t.Errorf("nil Generator Generate() = %q, want empty", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens("abcdefgh"); got != 2 {
		t.Errorf("EstimateTokens() = %d, want 2", got)
	}
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(\"\") = %d, want 0", got)
	}
}
