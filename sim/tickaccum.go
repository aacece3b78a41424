package sim

import "math/big"

// TickAccumulator sums time x capacity products. Realistic traces (years
// of events over 200,000 hosts) overflow 64-bit integers, so the
// accumulator is backed by math/big.Int (see DESIGN.md for why this is
// the one ambient concern left on the standard library).
type TickAccumulator struct {
	total *big.Int
}

// NewTickAccumulator returns a zero-valued accumulator.
func NewTickAccumulator() *TickAccumulator {
	return &TickAccumulator{total: new(big.Int)}
}

// Add adds duration*capacity to the running total. No-op if duration<=0
// or capacity<=0 (the engine may call this with a zero-length interval
// at an instantaneous create+delete).
func (t *TickAccumulator) Add(duration, capacity int64) {
	if duration <= 0 || capacity <= 0 {
		return
	}
	delta := new(big.Int).Mul(big.NewInt(duration), big.NewInt(capacity))
	t.total.Add(t.total, delta)
}

// Value returns the current total as a *big.Int. Callers must not mutate
// the result.
func (t *TickAccumulator) Value() *big.Int {
	return t.total
}

// Reset zeroes the accumulator, returning the pre-reset value.
func (t *TickAccumulator) Reset() *big.Int {
	old := t.total
	t.total = new(big.Int)
	return old
}
