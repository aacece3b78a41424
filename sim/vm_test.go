package sim

import "testing"

func TestNewVM_InitializesMaliciousFlagVector(t *testing.T) {
	// GIVEN a subscription and 3 malicious sets
	sub := NewSubscription("s1", 0, 3)

	// WHEN a VM is created
	vm := NewVM("v1", sub, 0, 10, 2, 4, "cat", 3)

	// THEN WasColocatedWithMalicious has length 3, all false
	if len(vm.WasColocatedWithMalicious) != 3 {
		t.Fatalf("expected length 3, got %d", len(vm.WasColocatedWithMalicious))
	}
	for m, v := range vm.WasColocatedWithMalicious {
		if v {
			t.Errorf("expected set %d false initially", m)
		}
	}
}

func TestVM_IsMalicious_ReflectsOwningSubscription(t *testing.T) {
	// GIVEN a subscription malicious in set 1 only
	sub := NewSubscription("s1", 0, 2)
	sub.Malicious[1] = true
	vm := NewVM("v1", sub, 0, 10, 1, 1, "cat", 2)

	// THEN IsMalicious matches the subscription's flag per set
	if vm.IsMalicious(0) {
		t.Error("expected set 0 false")
	}
	if !vm.IsMalicious(1) {
		t.Error("expected set 1 true")
	}
}
