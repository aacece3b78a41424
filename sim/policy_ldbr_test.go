package sim

import "testing"

func TestNewLDBRPolicy_RejectsWrongMaliciousSetCount(t *testing.T) {
	stub := &stubPertSampler{values: []float64{0.1}}
	if _, err := NewLDBRPolicy(stub, stub, 0); err == nil {
		t.Error("expected error for 0 malicious sets")
	}
	if _, err := NewLDBRPolicy(stub, stub, 2); err == nil {
		t.Error("expected error for 2 malicious sets")
	}
}

func TestLDBRPolicy_ProbOf_CachesPerSubscription(t *testing.T) {
	stub := &stubPertSampler{values: []float64{0.2, 0.8}}
	p, err := NewLDBRPolicy(stub, stub, 1)
	if err != nil {
		t.Fatalf("NewLDBRPolicy: %v", err)
	}
	sub := NewSubscription("s", 0, 1) // benign by default

	first := p.probOf(sub)
	second := p.probOf(sub)
	if first != second {
		t.Errorf("expected cached probability, got %v then %v", first, second)
	}
	if first != 0.2 {
		t.Errorf("expected first sample 0.2, got %v", first)
	}
}

func TestLDBRPolicy_ProbOf_DrawsMaliciousAndBenignFromDistinctSamplers(t *testing.T) {
	maliciousPert := &stubPertSampler{values: []float64{0.9}}
	benignPert := &stubPertSampler{values: []float64{0.1}}
	p, err := NewLDBRPolicy(maliciousPert, benignPert, 1)
	if err != nil {
		t.Fatalf("NewLDBRPolicy: %v", err)
	}

	mal := NewSubscription("mal", 0, 1)
	mal.Malicious[0] = true
	benign := NewSubscription("benign", 0, 1)

	if got := p.probOf(mal); got != 0.9 {
		t.Errorf("expected malicious subscription to draw from maliciousPert (0.9), got %v", got)
	}
	if got := p.probOf(benign); got != 0.1 {
		t.Errorf("expected benign subscription to draw from benignPert (0.1), got %v", got)
	}
}

func TestLDBRPolicy_PicksLowestExpectedLeakageHost(t *testing.T) {
	eng := newTestEngine(t, 2)
	h0, h1 := eng.Hosts[0], eng.Hosts[1]
	activateHost(eng, h0, 0)
	activateHost(eng, h1, 0)

	// Fixed priors: arriving subscription gets 0.1 (low risk of being
	// malicious itself), host0's tenant gets a high prior (0.9), host1's
	// tenant gets a low prior (0.05) — so host1 should score lower
	// expected leakage.
	stub := &stubPertSampler{values: []float64{0.9, 0.05, 0.1}}
	p, err := NewLDBRPolicy(stub, stub, 1)
	if err != nil {
		t.Fatalf("NewLDBRPolicy: %v", err)
	}

	subHigh := NewSubscription("high", 0, 1)
	subLow := NewSubscription("low", 0, 1)
	if err := h0.CreateVM(NewVM("h1", subHigh, 0, 100, 1, 1, "cat", 1), 0); err != nil {
		t.Fatalf("CreateVM h1: %v", err)
	}
	if err := h1.CreateVM(NewVM("l1", subLow, 0, 100, 1, 1, "cat", 1), 0); err != nil {
		t.Fatalf("CreateVM l1: %v", err)
	}
	// Prime both tenant priors before scoring the arriving VM, in the
	// deterministic order the stub sequence assumes.
	p.probOf(subHigh)
	p.probOf(subLow)

	arriving := NewSubscription("arriving", 0, 1)
	vm := NewVM("a1", arriving, 5, 100, 1, 1, "cat", 1)
	got, err := p.PickHost(eng, vm)
	if err != nil {
		t.Fatalf("PickHost: %v", err)
	}
	if got != h1 {
		t.Errorf("expected host1 (lower-prior tenant) to win, got host %d", got.Number)
	}
}

func TestLDBRPolicy_ExpectedLeakage_ExcludesOwnSubscriptionVMs(t *testing.T) {
	eng := newTestEngine(t, 1)
	h := eng.Hosts[0]
	activateHost(eng, h, 0)

	stub := &stubPertSampler{values: []float64{0.5}}
	p, err := NewLDBRPolicy(stub, stub, 1)
	if err != nil {
		t.Fatalf("NewLDBRPolicy: %v", err)
	}
	sub := NewSubscription("s", 0, 1)
	if err := h.CreateVM(NewVM("s1", sub, 0, 100, 1, 1, "cat", 1), 0); err != nil {
		t.Fatalf("CreateVM: %v", err)
	}

	// A host hosting only the arriving VM's own subscription has n=0
	// tenants, so expected leakage reduces to (1-1)*pNew = 0 regardless
	// of pNew, since the product over zero tenants is 1.
	score := p.expectedLeakage(sub, h, 0.5)
	if score != 0 {
		t.Errorf("expected zero leakage score for a self-only host, got %v", score)
	}
}
