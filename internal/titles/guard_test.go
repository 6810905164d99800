package titles

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/mfenderov/sitegen/pkg/models"
)

func TestEnsureUnique(t *testing.T) {
	tests := []struct {
		name         string
		title        string
		used         []string
		wantSame     bool
		wantAdjusted bool
	}{
		{name: "empty set", title: "Same Title", wantSame: true},
		{name: "unrelated titles", title: "Same Title", used: []string{"Other"}, wantSame: true},
		{name: "collision", title: "Same Title", used: []string{"Same Title"}, wantAdjusted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			used := make(map[string]struct{})
			for _, u := range tt.used {
				used[u] = struct{}{}
			}

			res := EnsureUnique(tt.title, used, rand.New(rand.NewPCG(1, 1)))

			if tt.wantSame && res.Title != tt.title {
				t.Errorf("Title = %q, want unchanged %q", res.Title, tt.title)
			}
			if res.Adjusted() != tt.wantAdjusted {
				t.Errorf("Adjusted() = %v, want %v", res.Adjusted(), tt.wantAdjusted)
			}
			if _, taken := used[res.Title]; taken {
				t.Errorf("Title %q is already used", res.Title)
			}
			if len(used) != len(tt.used) {
				t.Error("EnsureUnique must not modify the used set")
			}
			if res.Exhausted {
				t.Error("Exhausted should be false")
			}
		})
	}
}

func TestEnsureUnique_SuffixFormat(t *testing.T) {
	used := map[string]struct{}{"Same Title": {}}

	res := EnsureUnique("Same Title", used, rand.New(rand.NewPCG(5, 5)))

	if !strings.HasPrefix(res.Title, "Same Title (") || !strings.HasSuffix(res.Title, ")") {
		t.Fatalf("Title = %q, want %q", res.Title, "Same Title (xxxxxx)")
	}
	if got := len(res.Title) - len("Same Title ()"); got != 6 {
		t.Errorf("suffix length = %d, want 6", got)
	}
}

func TestEnsureUnique_Exhausted(t *testing.T) {
	// Pre-compute every candidate the seeded source will produce so all of
	// them collide.
	seed := func() *rand.Rand { return rand.New(rand.NewPCG(9, 9)) }
	used := map[string]struct{}{"Dup": {}}
	probe := seed()
	var last string
	for range MaxAttempts {
		last = fmt.Sprintf("Dup (%s)", models.RandomSuffix(probe, 6))
		used[last] = struct{}{}
	}

	res := EnsureUnique("Dup", used, seed())

	if !res.Exhausted {
		t.Fatal("Exhausted = false, want true")
	}
	if res.Attempts != MaxAttempts {
		t.Errorf("Attempts = %d, want %d", res.Attempts, MaxAttempts)
	}
	if res.Title != last {
		t.Errorf("Title = %q, want last candidate %q", res.Title, last)
	}
}
