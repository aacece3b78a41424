package sim

import (
	"math/rand"
	"time"
)

// nondeterministicSeed draws a seed from the wall clock for runs that
// don't pin one (spec §6: "an unspecified seed draws nondeterministically").
func nondeterministicSeed() int64 {
	return time.Now().UnixNano()
}

// Three independent pseudo-random streams are derived from a single
// master seed, so that varying one dimension of an experiment (e.g. the
// LDBR PERT parameters) cannot perturb another (e.g. which subscriptions
// are labelled malicious) even when the trace and seed are held fixed.
//
//   - malicious-subscription labelling uses the master seed directly.
//   - the placement framework's RNG uses seed+1.
//   - the LDBR policy's beta-PERT RNG uses seed+2.

// NewMaliciousRNG returns the RNG used to decide which subscriptions are
// labelled malicious, seeded directly from seed.
func NewMaliciousRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewPlacementRNG returns the RNG exclusively owned by the engine and
// threaded through the placement framework (pickEmptyHost, pickRandom,
// tie-breaks), seeded from seed+1.
func NewPlacementRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed + 1))
}

// NewLDBRRNG returns the independent RNG owned by the LDBR policy for
// drawing per-subscription beta-PERT probabilities, seeded from seed+2
// so its draws never perturb placement decisions made by other policies
// replaying the same trace and seed.
func NewLDBRRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed + 2))
}
