package sim

import "testing"

func TestTickAccumulator_AddsDurationTimesCapacity(t *testing.T) {
	// GIVEN a fresh accumulator
	acc := NewTickAccumulator()

	// WHEN two intervals are added
	acc.Add(10, 4)
	acc.Add(5, 2)

	// THEN the total is the sum of products
	if acc.Value().Int64() != 50 {
		t.Errorf("expected 50, got %s", acc.Value().String())
	}
}

func TestTickAccumulator_IgnoresNonPositiveInputs(t *testing.T) {
	acc := NewTickAccumulator()
	acc.Add(0, 10)
	acc.Add(10, 0)
	acc.Add(-5, 10)
	acc.Add(10, -5)

	if acc.Value().Sign() != 0 {
		t.Errorf("expected zero total, got %s", acc.Value().String())
	}
}

func TestTickAccumulator_ResetReturnsPriorTotalAndZeroes(t *testing.T) {
	acc := NewTickAccumulator()
	acc.Add(10, 10)

	old := acc.Reset()
	if old.Int64() != 100 {
		t.Errorf("expected prior total 100, got %s", old.String())
	}
	if acc.Value().Sign() != 0 {
		t.Error("expected accumulator zeroed after reset")
	}
}
