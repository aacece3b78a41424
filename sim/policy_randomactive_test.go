package sim

import "testing"

func TestRandomActive_PicksFromActiveSetOnly(t *testing.T) {
	eng := newTestEngine(t, 3)
	activateHost(eng, eng.Hosts[1], 0)

	p := NewRandomActive()
	if p.Name() != "random-active" {
		t.Errorf("unexpected name %q", p.Name())
	}
	got, err := p.PickHost(eng, &VM{ID: "v", Cores: 1, Memory: 1})
	if err != nil {
		t.Fatalf("PickHost: %v", err)
	}
	if got != eng.Hosts[1] {
		t.Errorf("expected the only active host to be chosen, got host %d", got.Number)
	}
}

func TestRandomActive_FallsBackToEmptyHostWhenNoneActive(t *testing.T) {
	eng := newTestEngine(t, 2)
	p := NewRandomActive()
	got, err := p.PickHost(eng, &VM{ID: "v", Cores: 1, Memory: 1})
	if err != nil {
		t.Fatalf("PickHost: %v", err)
	}
	if got.Active {
		t.Error("expected an inactive host to be returned")
	}
}
