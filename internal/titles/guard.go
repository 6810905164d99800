// Package titles keeps document titles unique within a run.
package titles

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mfenderov/sitegen/pkg/models"
)

const (
	// MaxAttempts bounds the number of suffixed candidates tried.
	MaxAttempts = 10
	suffixLen   = 6
)

// Result of EnsureUnique. Exhausted is set when the bound was hit and
// Title may still collide.
type Result struct {
	Title     string
	Attempts  int
	Exhausted bool
}

// Adjusted reports whether a suffix was appended.
func (r Result) Adjusted() bool {
	return r.Attempts > 0
}

// EnsureUnique returns title unchanged when it is not in used, otherwise
// "title (xxxxxx)" with a random hex suffix. used is never modified; the
// caller records the accepted title.
func EnsureUnique(title string, used map[string]struct{}, rnd *rand.Rand) Result {
	if _, taken := used[title]; !taken {
		return Result{Title: title}
	}

	res := Result{Title: title}
	for res.Attempts < MaxAttempts {
		res.Attempts++
		res.Title = fmt.Sprintf("%s (%s)", title, models.RandomSuffix(rnd, suffixLen))
		if _, taken := used[res.Title]; !taken {
			slog.Info("Title made unique", "original", title, "title", res.Title, "attempts", res.Attempts)
			return res
		}
	}

	res.Exhausted = true
	slog.Warn("Title uniqueness attempts exhausted, accepting last candidate",
		"original", title, "title", res.Title, "attempts", res.Attempts)
	return res
}
