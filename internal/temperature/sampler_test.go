package temperature

import (
	"math/rand/v2"
	"testing"
)

func newSampler(seed uint64) *Sampler {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func TestSample_BoundsHoldForAllDraws(t *testing.T) {
	tests := []struct {
		name      string
		base      float64
		randomize bool
		lo, hi    float64
	}{
		{"jitter low base", 0.1, false, 0, 0},
		{"jitter high base", 1.5, false, 0, 0},
		{"jitter default", 0.8, false, 0, 0},
		{"randomize default range", 0.8, true, 0.5, 1.2},
		{"randomize full range", 0.8, true, 0.1, 1.5},
		{"randomize out of range inputs", 0.8, true, -3, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSampler(42)
			for i := 0; i < 5000; i++ {
				got := s.Sample(tt.base, tt.randomize, tt.lo, tt.hi)
				if got < 0.1 || got > 1.5 {
					t.Fatalf("draw %d: Sample() = %v, outside [0.1, 1.5]", i, got)
				}
				c := s.Content(got, tt.randomize)
				if c < 0.1 || c > 1.5 {
					t.Fatalf("draw %d: Content() = %v, outside [0.1, 1.5]", i, c)
				}
			}
		})
	}
}

func TestSample_JitterWithinTenPercent(t *testing.T) {
	s := newSampler(7)
	for i := 0; i < 1000; i++ {
		got := s.Sample(1.0, false, 0, 0)
		if got < 0.9 || got > 1.1 {
			t.Fatalf("Sample(1.0) = %v, want within ±10%%", got)
		}
	}
}

func TestSample_RandomizeWithinRange(t *testing.T) {
	s := newSampler(9)
	for i := 0; i < 1000; i++ {
		got := s.Sample(0.8, true, 0.5, 1.2)
		if got < 0.5 || got > 1.2 {
			t.Fatalf("Sample() = %v, want within [0.5, 1.2]", got)
		}
	}
}

func TestContent(t *testing.T) {
	s := newSampler(3)

	if got := s.Content(0.73, false); got != 0.73 {
		t.Errorf("Content() without randomize = %v, want 0.73", got)
	}
	for i := 0; i < 1000; i++ {
		got := s.Content(0.73, true)
		if got < 0.68-1e-9 || got > 0.78+1e-9 {
			t.Fatalf("Content() = %v, want within ±0.05 of 0.73", got)
		}
	}
}

func TestSample_Deterministic(t *testing.T) {
	a, b := newSampler(11), newSampler(11)
	for i := 0; i < 10; i++ {
		if x, y := a.Sample(0.8, true, 0.5, 1.2), b.Sample(0.8, true, 0.5, 1.2); x != y {
			t.Fatalf("same seed diverged: %v != %v", x, y)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0.1},
		{0.5, 0.5},
		{2, 1.5},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
