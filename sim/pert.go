package sim

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// PertSampler draws independent samples from a Beta-PERT distribution
// over [0, 1], used by LDBR to assign each subscription a private prior
// probability of maliciousness. It is injected so tests can substitute a
// fixed-sequence stub instead of a real distribution.
type PertSampler interface {
	Sample() float64
}

// GonumPertSampler implements PertSampler via the standard Beta-PERT
// shape parameters derived from (min=0, mode, max=1, lambda), backed by
// gonum's Beta distribution.
type GonumPertSampler struct {
	beta distuv.Beta
}

// NewGonumPertSampler builds a PertSampler with the given mode and
// concentration (lambda), drawing from rng. mode must lie in [0, 1];
// lambda must be positive (4 is the conventional PERT shape).
func NewGonumPertSampler(rng *rand.Rand, mode, lambda float64) (*GonumPertSampler, error) {
	if mode < 0 || mode > 1 {
		return nil, fmt.Errorf("pert: mode must be in [0,1], got %v", mode)
	}
	if lambda <= 0 {
		return nil, fmt.Errorf("pert: lambda must be positive, got %v", lambda)
	}
	alpha := 1 + lambda*mode
	betaParam := 1 + lambda*(1-mode)
	return &GonumPertSampler{
		beta: distuv.Beta{Alpha: alpha, Beta: betaParam, Src: rng},
	}, nil
}

func (s *GonumPertSampler) Sample() float64 { return s.beta.Rand() }
