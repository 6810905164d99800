// Package temperature derives per-document sampling temperatures.
package temperature

import (
	"math/rand/v2"

	"github.com/mfenderov/sitegen/pkg/models"
)

const (
	jitterFraction = 0.1
	contentJitter  = 0.05
)

// Sampler draws temperatures from an injected random source.
// It is not safe for concurrent use; the orchestrator owns one per run.
type Sampler struct {
	rnd *rand.Rand
}

// New creates a Sampler. A nil rnd uses a randomly seeded PCG source.
func New(rnd *rand.Rand) *Sampler {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{rnd: rnd}
}

// Clamp bounds t to [0.1, 1.5].
func Clamp(t float64) float64 {
	return min(models.MaxTemperature, max(models.MinTemperature, t))
}

// Sample returns the plan temperature. With randomize it draws uniformly
// from [lo, hi]; otherwise it jitters base by up to 10% of base.
func (s *Sampler) Sample(base float64, randomize bool, lo, hi float64) float64 {
	if randomize {
		lo, hi = Clamp(lo), Clamp(hi)
		if hi <= lo {
			return lo
		}
		return Clamp(s.uniform(lo, hi))
	}
	v := base * jitterFraction
	return Clamp(base + s.uniform(-v, v))
}

// Content derives the writing temperature from the plan temperature.
// Without randomization it is the plan temperature unchanged.
func (s *Sampler) Content(plan float64, randomize bool) float64 {
	if !randomize {
		return plan
	}
	return Clamp(plan + s.uniform(-contentJitter, contentJitter))
}

func (s *Sampler) uniform(lo, hi float64) float64 {
	return lo + s.rnd.Float64()*(hi-lo)
}
