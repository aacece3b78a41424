package sim

import "testing"

func TestBestFit_PrefersMinimumFreeCoresAmongActive(t *testing.T) {
	eng := newTestEngine(t, 2)
	h0, h1 := eng.Hosts[0], eng.Hosts[1]
	activateHost(eng, h0, 0)
	activateHost(eng, h1, 0)

	sub := NewSubscription("s", 0, 0)
	// host0 has 3 free cores, host1 has 1 free core (of 4 each)
	if err := h0.CreateVM(NewVM("a", sub, 0, 100, 1, 1, "cat", 0), 0); err != nil {
		t.Fatalf("CreateVM a: %v", err)
	}
	if err := h1.CreateVM(NewVM("b", sub, 0, 100, 3, 3, "cat", 0), 0); err != nil {
		t.Fatalf("CreateVM b: %v", err)
	}

	p := NewBestFit()
	got, err := p.PickHost(eng, &VM{ID: "v", Cores: 1, Memory: 1})
	if err != nil {
		t.Fatalf("PickHost: %v", err)
	}
	if got != h1 {
		t.Errorf("expected best-fit to choose the tighter-fitting host1, got host %d", got.Number)
	}
}

func TestBestFit_FallsBackToEmptyHostWhenNoActiveHasCapacity(t *testing.T) {
	eng := newTestEngine(t, 2)
	// no hosts activated
	p := NewBestFit()
	got, err := p.PickHost(eng, &VM{ID: "v", Cores: 1, Memory: 1})
	if err != nil {
		t.Fatalf("PickHost: %v", err)
	}
	if got.Active {
		t.Error("expected an inactive host to be returned")
	}
}

func TestMinMaxFreeCoresTies(t *testing.T) {
	h1 := &Host{Cores: 4, CoresBusy: 1} // 3 free
	h2 := &Host{Cores: 4, CoresBusy: 3} // 1 free
	h3 := &Host{Cores: 4, CoresBusy: 1} // 3 free

	min := minFreeCoresTies([]*Host{h1, h2, h3})
	if len(min) != 1 || min[0] != h2 {
		t.Errorf("expected only h2 to minimize free cores, got %v", min)
	}

	max := maxFreeCoresTies([]*Host{h1, h2, h3})
	if len(max) != 2 {
		t.Errorf("expected h1 and h3 to tie for max free cores, got %d", len(max))
	}
}
