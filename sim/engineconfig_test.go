package sim

import "testing"

func TestDefaultEngineConfig_AppliesDocumentedDefaults(t *testing.T) {
	cfg := DefaultEngineConfig()
	if cfg.NumHosts != 200000 {
		t.Errorf("expected default num_hosts=200000, got %d", cfg.NumHosts)
	}
	if cfg.CoresPerHost != 32 {
		t.Errorf("expected default cores_per_host=32, got %d", cfg.CoresPerHost)
	}
	if cfg.StatInterval != 21600 {
		t.Errorf("expected default stat_interval=21600, got %d", cfg.StatInterval)
	}
	if cfg.NStar != 4 {
		t.Errorf("expected default n_star=4, got %d", cfg.NStar)
	}
	if !cfg.KnownProportionSubscriptionBased || !cfg.KnownProportionLowestAvgSeenForNewSubs {
		t.Error("expected both known-proportion defaults true")
	}
}

func TestNumMaliciousSets(t *testing.T) {
	cfg := EngineConfig{MaliciousProportions: []float64{0.1, 0.2, 0.3}}
	if cfg.NumMaliciousSets() != 3 {
		t.Errorf("expected 3, got %d", cfg.NumMaliciousSets())
	}

	empty := EngineConfig{}
	if empty.NumMaliciousSets() != 0 {
		t.Errorf("expected 0 for unset MaliciousProportions, got %d", empty.NumMaliciousSets())
	}
}
