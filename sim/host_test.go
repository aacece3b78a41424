package sim

import "testing"

func TestHost_HasCapacity(t *testing.T) {
	// GIVEN a host with 4 cores, 8 memory
	h := NewHost(0, 4, 8, 1)

	// THEN a request within capacity fits, one beyond does not
	if !h.HasCapacity(4, 8) {
		t.Error("expected exact-fit capacity")
	}
	if h.HasCapacity(5, 8) {
		t.Error("expected over-core request to be rejected")
	}
	if h.HasCapacity(4, 9) {
		t.Error("expected over-memory request to be rejected")
	}
}

func TestHost_Boot_IsNoOpWhenAlreadyActive(t *testing.T) {
	// GIVEN a host booted at t=5
	h := NewHost(0, 4, 8, 1)
	h.Boot(5)

	// WHEN Boot is called again at t=10
	h.Boot(10)

	// THEN Booted retains the original timestamp (§9 double-activation guard)
	if h.Booted != 5 {
		t.Errorf("expected Booted=5, got %d", h.Booted)
	}
	if h.NumberOfBoots != 1 {
		t.Errorf("expected exactly one boot recorded, got %d", h.NumberOfBoots)
	}
}

func TestHost_Shutdown_ErrorsWhenInactiveOrNonEmpty(t *testing.T) {
	h := NewHost(0, 4, 8, 1)

	// Shutdown while inactive
	if err := h.Shutdown(0); err == nil {
		t.Error("expected error shutting down inactive host")
	}

	// Shutdown while hosting a VM
	h.Boot(0)
	sub := NewSubscription("s", 0, 1)
	vm := NewVM("v1", sub, 0, 100, 1, 1, "cat", 1)
	if err := h.CreateVM(vm, 0); err != nil {
		t.Fatalf("CreateVM: %v", err)
	}
	if err := h.Shutdown(5); err == nil {
		t.Error("expected error shutting down non-empty host")
	}
}

func TestHost_CreateVM_RejectsInsufficientCapacity(t *testing.T) {
	// GIVEN a host with only 2 free cores
	h := NewHost(0, 2, 4, 1)
	sub := NewSubscription("s", 0, 1)
	vm := NewVM("v1", sub, 0, 10, 4, 1, "cat", 1)

	// WHEN placing a 4-core VM
	err := h.CreateVM(vm, 0)

	// THEN it is rejected
	if err == nil {
		t.Fatal("expected capacity error")
	}
}

func TestHost_CreateVM_UpdatesCoresidencyAndExposureSkippingSelf(t *testing.T) {
	// GIVEN a host with two subscriptions' VMs already present, one of
	// which (b) is malicious in set 0
	h := NewHost(0, 10, 10, 1)
	h.Boot(0)
	a := NewSubscription("a", 0, 1)
	b := NewSubscription("b", 0, 1)
	b.Malicious[0] = true

	vA1 := NewVM("a1", a, 0, 100, 1, 1, "cat", 1)
	if err := h.CreateVM(vA1, 0); err != nil {
		t.Fatalf("CreateVM a1: %v", err)
	}
	vB1 := NewVM("b1", b, 0, 100, 1, 1, "cat", 1)
	if err := h.CreateVM(vB1, 0); err != nil {
		t.Fatalf("CreateVM b1: %v", err)
	}

	// WHEN a second VM of subscription a arrives (self, should not mark
	// coresidency with a1) alongside the malicious b1
	vA2 := NewVM("a2", a, 5, 100, 1, 1, "cat", 1)
	if err := h.CreateVM(vA2, 5); err != nil {
		t.Fatalf("CreateVM a2: %v", err)
	}

	// THEN subscription a is exposed to the malicious set via b, but "a"
	// never appears in its own SeenSubs/coresidency maps
	if !a.ExposedToMaliciousSub[0] {
		t.Error("expected a exposed to malicious set 0 via b")
	}
	if _, ok := a.SeenSubs["a"]; ok {
		t.Error("self should never appear in SeenSubs")
	}
	if !vA2.WasColocatedWithMalicious[0] {
		t.Error("expected vA2 to be marked colocated with malicious VM")
	}
	if !vA1.WasColocatedWithMalicious[0] {
		t.Error("expected vA1 (already present) retroactively marked on b1's arrival")
	}
}

func TestHost_DeleteVM_ClosesMaliciousPeriodAndBreaksCoresidency(t *testing.T) {
	// GIVEN a host with a benign and a malicious VM co-resident since t=0
	h := NewHost(0, 10, 10, 1)
	h.Boot(0)
	a := NewSubscription("a", 0, 1)
	m := NewSubscription("m", 0, 1)
	m.Malicious[0] = true

	vA := NewVM("a1", a, 0, 100, 1, 1, "cat", 1)
	vM := NewVM("m1", m, 0, 50, 1, 1, "cat", 1)
	if err := h.CreateVM(vA, 0); err != nil {
		t.Fatalf("CreateVM a: %v", err)
	}
	if err := h.CreateVM(vM, 0); err != nil {
		t.Fatalf("CreateVM m: %v", err)
	}
	if !h.HasMaliciousPeriod(0) {
		t.Fatal("expected an open malicious period")
	}

	// WHEN the malicious VM is deleted at t=50
	if err := h.DeleteVM(vM, 50); err != nil {
		t.Fatalf("DeleteVM: %v", err)
	}

	// THEN the malicious period closes at t=50 and co-residency between a
	// and m stops accumulating
	periods := h.MaliciousPeriods(0)
	if len(periods) != 1 || periods[0].Start != 0 || periods[0].End != 50 {
		t.Errorf("expected one closed period [0,50), got %+v", periods)
	}
	if _, ok := a.CurrentlyCoresSubs["m"]; ok {
		t.Error("expected coresidency with m to have ended")
	}
	if a.CoresidentTime["m"] != 50 {
		t.Errorf("expected 50 ticks of coresident time, got %d", a.CoresidentTime["m"])
	}
}

func TestHost_DeleteVM_ErrorsForUnhostedVM(t *testing.T) {
	h := NewHost(0, 4, 4, 1)
	h.Boot(0)
	sub := NewSubscription("s", 0, 1)
	vm := NewVM("v1", sub, 0, 10, 1, 1, "cat", 1)
	if err := h.DeleteVM(vm, 5); err == nil {
		t.Error("expected error deleting a VM never hosted here")
	}
}

func TestHost_FlushInterval_ResetsAccumulatorsAndBaseline(t *testing.T) {
	// GIVEN an active host that has been busy since boot
	h := NewHost(0, 4, 4, 1)
	h.Boot(0)
	sub := NewSubscription("s", 0, 1)
	vm := NewVM("v1", sub, 0, 100, 2, 2, "cat", 1)
	if err := h.CreateVM(vm, 0); err != nil {
		t.Fatalf("CreateVM: %v", err)
	}

	// WHEN flushed at t=10
	busy, total := h.FlushInterval(10)

	// THEN busy/total reflect 10 ticks at 2 busy cores / 4 total cores
	if busy.Int64() != 20 {
		t.Errorf("expected busy=20, got %s", busy.String())
	}
	if total.Int64() != 40 {
		t.Errorf("expected total=40, got %s", total.String())
	}
	if h.IntervalBaseline != 10 {
		t.Errorf("expected baseline reset to 10, got %d", h.IntervalBaseline)
	}

	// WHEN flushed again immediately
	busy2, total2 := h.FlushInterval(10)
	if busy2.Sign() != 0 || total2.Sign() != 0 {
		t.Error("expected zeroed accumulators immediately after a flush")
	}
}

func TestHost_LifetimeTicks_ExtrapolatesOpenTailWithoutMutating(t *testing.T) {
	// GIVEN an active host busy since boot
	h := NewHost(0, 4, 4, 1)
	h.Boot(0)
	sub := NewSubscription("s", 0, 1)
	vm := NewVM("v1", sub, 0, 100, 1, 1, "cat", 1)
	if err := h.CreateVM(vm, 0); err != nil {
		t.Fatalf("CreateVM: %v", err)
	}

	// WHEN LifetimeTicks is queried at t=20 twice
	busy1, total1 := h.LifetimeTicks(20)
	busy2, total2 := h.LifetimeTicks(20)

	// THEN both calls agree (no mutation) and reflect 20 ticks of 1/4 busy
	if busy1.Int64() != 20 || busy2.Int64() != 20 {
		t.Errorf("expected busy=20 both times, got %s / %s", busy1, busy2)
	}
	if total1.Int64() != 80 || total2.Int64() != 80 {
		t.Errorf("expected total=80 both times, got %s / %s", total1, total2)
	}
}
