package similarity

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

func page(body string) string {
	return "<html><head><script>var x=1;</script></head><body><p>" + body + "</p></body></html>"
}

func TestScore_IdenticalDocuments(t *testing.T) {
	e := NewEvaluator(nil)

	m, err := e.Score(context.Background(), []Entry{
		{Label: "A", Markup: page("Dogs are great pets.")},
		{Label: "B", Markup: page("Dogs are great pets.")},
	})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if m == nil {
		t.Fatal("Score() = nil, want matrix")
	}

	if math.Abs(m.Scores[0][1]-1.0) > 1e-6 {
		t.Errorf("off-diagonal = %v, want ≈1.0", m.Scores[0][1])
	}
	if m.Scores[0][0] != 1.0 || m.Scores[1][1] != 1.0 {
		t.Errorf("diagonal = %v, %v", m.Scores[0][0], m.Scores[1][1])
	}
}

func TestScore_NotEnoughText(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"none", nil},
		{"single", []Entry{{Label: "A", Markup: page("Dogs are great pets.")}}},
		{"one empty", []Entry{
			{Label: "A", Markup: page("Dogs are great pets.")},
			{Label: "B", Markup: "<html><body><script>only()</script></body></html>"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewEvaluator(nil).Score(context.Background(), tt.entries)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if m != nil {
				t.Errorf("Score() = %+v, want nil", m)
			}
		})
	}
}

func TestScore_MatrixShape(t *testing.T) {
	e := NewEvaluator(nil, WithConcurrency(3), WithLexical(true))

	m, err := e.Score(context.Background(), []Entry{
		{Label: "Go", SiteID: "1", Text: "Go is a statically typed compiled language."},
		{Label: "Empty", SiteID: "2"},
		{Label: "Rust", SiteID: "3", Text: "Rust is a systems programming language focused on safety."},
		{Label: "Cats", SiteID: "4", Text: "Cats sleep for most of the day."},
	})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if m.Size() != 3 {
		t.Fatalf("Size() = %d, want 3 (empty entry skipped)", m.Size())
	}
	wantLabels := []string{"Go", "Rust", "Cats"}
	for i, l := range wantLabels {
		if m.Labels[i] != l {
			t.Errorf("Labels[%d] = %q, want %q", i, m.Labels[i], l)
		}
	}
	if m.SiteIDs[2] != "4" {
		t.Errorf("SiteIDs = %v", m.SiteIDs)
	}
	for i := range m.Scores {
		for j := range m.Scores {
			if m.Scores[i][j] != m.Scores[j][i] {
				t.Errorf("Scores not symmetric at %d,%d", i, j)
			}
			if m.Lexical[i][j] != m.Lexical[j][i] {
				t.Errorf("Lexical not symmetric at %d,%d", i, j)
			}
		}
	}
	if m.Scores[0][1] >= 1 || m.Scores[0][2] >= 1 {
		t.Errorf("different texts scored as identical: %v", m.Scores)
	}
	if m.Embedder != "hashing-384" {
		t.Errorf("Embedder = %q", m.Embedder)
	}
}

type failingEmbedder struct{ calls atomic.Int32 }

func (f *failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	f.calls.Add(1)
	return nil, errors.New("backend down")
}

func (f *failingEmbedder) Name() string { return "failing" }

func TestScore_EmbedderError(t *testing.T) {
	f := &failingEmbedder{}
	_, err := NewEvaluator(f).Score(context.Background(), []Entry{
		{Label: "A", Text: "one"},
		{Label: "B", Text: "two"},
	})
	if err == nil {
		t.Fatal("Score() expected error")
	}
	if f.calls.Load() == 0 {
		t.Error("embedder was not called")
	}
}

type batchEmbedder struct {
	HashEmbedder
	batches int
}

func (b *batchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	b.batches++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := b.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func TestScore_BatchEmbedder(t *testing.T) {
	b := &batchEmbedder{HashEmbedder: *NewHashEmbedder(64)}
	e := NewEvaluator(b, WithConcurrency(4))

	m, err := e.Score(context.Background(), []Entry{
		{Label: "A", Text: "Dogs are great pets."},
		{Label: "B", Text: "Dogs are great pets."},
		{Label: "C", Text: "Quantum chromodynamics and gluons."},
	})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if b.batches != 1 {
		t.Errorf("EmbedBatch called %d times, want 1", b.batches)
	}
	if m.Size() != 3 || math.Abs(m.Scores[0][1]-1.0) > 1e-6 {
		t.Errorf("Scores = %v", m.Scores)
	}
	if m.Scores[0][2] >= m.Scores[0][1] {
		t.Errorf("unrelated pair %v should score below identical pair %v", m.Scores[0][2], m.Scores[0][1])
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashEmbedder(t *testing.T) {
	h := NewHashEmbedder(0)
	a, _ := h.Embed(context.Background(), "Dogs are great pets.")
	b, _ := h.Embed(context.Background(), "dogs ARE great pets")
	c, _ := h.Embed(context.Background(), "Quarterly revenue grew in Europe.")

	if len(a) != DefaultDims {
		t.Fatalf("len = %d, want %d", len(a), DefaultDims)
	}
	if got := Cosine(a, b); math.Abs(got-1) > 1e-6 {
		t.Errorf("case and punctuation should not matter, cosine = %v", got)
	}
	if got := Cosine(a, c); got > 0.5 {
		t.Errorf("unrelated sentences cosine = %v, want low", got)
	}

	empty, err := h.Embed(context.Background(), "")
	if err != nil || len(empty) != DefaultDims {
		t.Errorf("Embed(\"\") = %d dims, err %v", len(empty), err)
	}
}

func TestLexical(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Dogs are great pets.", "dogs are great pets", 1},
		{"disjoint", "alpha beta", "gamma delta", 0},
		{"half", "a b c d", "a b x y", 0.5},
		{"both empty", "", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lexical(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Lexical() = %v, want %v", got, tt.want)
			}
		})
	}
}
