package sim

import "math"

// EngineConfig holds the enumerated configuration options of spec §6.
// Zero-valued fields are used as given (only StatMinTime falls back, to
// MinTime); the defaults come from DefaultEngineConfig, which callers that
// load this from YAML (see cmd/config.go) start from before overriding
// the fields present in the file.
type EngineConfig struct {
	NumHosts      int     `yaml:"num_hosts"`
	ActiveHosts   int     `yaml:"active_hosts"`
	CoresPerHost  int64   `yaml:"cores_per_host"`
	MemoryPerHost float64 `yaml:"memory_per_host"`

	MinTime int64 `yaml:"min_time"`
	// MaxTime is the trace window's upper bound; a config that omits
	// max_time gets DefaultEngineConfig's unbounded default rather than
	// the zero value, which would silently drop every VM in loadFile.
	MaxTime int64 `yaml:"max_time"`

	StatInterval int64 `yaml:"stat_interval"`
	StatMinTime  int64 `yaml:"stat_min_time"`

	// MaliciousProportions has one entry per malicious set.
	MaliciousProportions []float64 `yaml:"malicious_proportions"`
	// MaliciousSubscriptionFiles names additional trace files whose
	// subscriptions are forced malicious in every set.
	MaliciousSubscriptionFiles []string `yaml:"malicious_subscription_files"`
	// ReplaceMaliciousSubscriptionID, if non-empty, rewrites every loaded
	// malicious VM's subscription to this synthetic ID after sorting.
	ReplaceMaliciousSubscriptionID string `yaml:"replace_malicious_subscription_id"`

	NStar int64 `yaml:"n_star"`

	MaxCores  int64   `yaml:"max_cores"`
	MaxMemory float64 `yaml:"max_memory"`

	PertMode   float64 `yaml:"pert_mode"`
	PertLambda float64 `yaml:"pert_lambda"`

	// KnownProportionSubscriptionBased selects subscription-level (true)
	// vs VM-level (false) proportion-known scoring for known-proportion.
	KnownProportionSubscriptionBased bool `yaml:"known_proportion_subscription_based"`
	// KnownProportionLowestAvgSeenForNewSubs enables the zero-proportion
	// fallback (pick the host whose tenants have the lowest average
	// seen-subs cardinality) for known-proportion.
	KnownProportionLowestAvgSeenForNewSubs bool `yaml:"known_proportion_lowest_avg_seen_for_new_subs"`

	// Seed fixes the placement RNG (seed+1) and LDBR RNG (seed+2); the
	// malicious-labelling RNG uses it directly. A nil Seed draws from a
	// nondeterministic source at construction time.
	Seed *int64 `yaml:"seed"`

	Policy string `yaml:"policy"`
}

// DefaultEngineConfig returns an EngineConfig with every default from §6
// applied.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		NumHosts:      200000,
		ActiveHosts:   0,
		CoresPerHost:  32,
		MemoryPerHost: 224,
		MaxTime:       math.MaxInt64,
		StatInterval:  21600,
		NStar:         4,
		PertMode:      0.9,
		PertLambda:    3.0,

		KnownProportionSubscriptionBased:       true,
		KnownProportionLowestAvgSeenForNewSubs: true,
	}
}

// NumMaliciousSets returns the number of malicious sets configured.
func (c EngineConfig) NumMaliciousSets() int {
	return len(c.MaliciousProportions)
}
