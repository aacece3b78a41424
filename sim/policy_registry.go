package sim

import "fmt"

// NewPlacementPolicy constructs the policy named by config.Policy and
// performs its warm-up host activation. Every policy but Han/Han-KeepOn
// treats config.ActiveHosts as a count of hosts to activate uniformly at
// random at config.MinTime; Han/Han-KeepOn instead treat it as the fixed
// group size and activate only group 0.
func NewPlacementPolicy(config EngineConfig, eng *Engine, seed int64) (PlacementPolicy, error) {
	switch config.Policy {
	case "first-fit":
		p := NewFirstFit()
		activateRandomHosts(eng, config.ActiveHosts, config.MinTime)
		return p, nil
	case "next-fit":
		p := NewNextFit()
		activateRandomHosts(eng, config.ActiveHosts, config.MinTime)
		return p, nil
	case "best-fit":
		p := NewBestFit()
		activateRandomHosts(eng, config.ActiveHosts, config.MinTime)
		return p, nil
	case "worst-fit":
		p := NewWorstFit()
		activateRandomHosts(eng, config.ActiveHosts, config.MinTime)
		return p, nil
	case "random-active":
		p := NewRandomActive()
		activateRandomHosts(eng, config.ActiveHosts, config.MinTime)
		return p, nil
	case "dedicated-instance":
		p := NewDedicatedInstance()
		activateRandomHosts(eng, config.ActiveHosts, config.MinTime)
		return p, nil
	case "agarwal-pcuf":
		p := NewAgarwalPCUF()
		activateRandomHosts(eng, config.ActiveHosts, config.MinTime)
		return p, nil
	case "known-proportion":
		p := NewKnownProportion(config.KnownProportionSubscriptionBased, config.KnownProportionLowestAvgSeenForNewSubs)
		activateRandomHosts(eng, config.ActiveHosts, config.MinTime)
		return p, nil
	case "azar":
		if config.MaxCores <= 0 {
			return nil, fmt.Errorf("azar: max_cores must be positive, got %d", config.MaxCores)
		}
		p := NewAzarPolicy(config.ActiveHosts, config.MaxCores, config.MaxMemory)
		activated := activateRandomHosts(eng, config.ActiveHosts, config.MinTime)
		p.Seed(activated)
		return p, nil
	case "han-pssf", "han-keepon":
		if config.ActiveHosts <= 0 {
			return nil, fmt.Errorf("%s: active_hosts (group size) must be positive, got %d", config.Policy, config.ActiveHosts)
		}
		p := NewHanPolicy(int64(config.ActiveHosts), config.NStar, config.Policy == "han-keepon")
		activateGroupZero(eng, p, config.MinTime)
		return p, nil
	case "ldbr":
		if len(config.MaliciousProportions) != 1 {
			return nil, fmt.Errorf("ldbr: requires exactly one malicious set, got %d", len(config.MaliciousProportions))
		}
		ldbrRNG := NewLDBRRNG(seed)
		maliciousPert, err := NewGonumPertSampler(ldbrRNG, config.PertMode, config.PertLambda)
		if err != nil {
			return nil, fmt.Errorf("ldbr: %w", err)
		}
		benignPert, err := NewGonumPertSampler(ldbrRNG, 1-config.PertMode, config.PertLambda)
		if err != nil {
			return nil, fmt.Errorf("ldbr: %w", err)
		}
		p, err := NewLDBRPolicy(maliciousPert, benignPert, config.NumMaliciousSets())
		if err != nil {
			return nil, err
		}
		activateRandomHosts(eng, config.ActiveHosts, config.MinTime)
		return p, nil
	default:
		return nil, fmt.Errorf("unknown placement policy %q", config.Policy)
	}
}

// activateRandomHosts activates k distinct hosts chosen uniformly at
// random (via the engine's placement RNG) at time t, returning the
// activated hosts in the order they were chosen.
func activateRandomHosts(eng *Engine, k int, t int64) []*Host {
	if k <= 0 {
		return nil
	}
	idx := make([]int, len(eng.Hosts))
	for i := range idx {
		idx[i] = i
	}
	n := len(idx)
	if k > n {
		k = n
	}
	out := make([]*Host, 0, k)
	for i := 0; i < k; i++ {
		j := i + eng.rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
		h := eng.Hosts[idx[i]]
		activateHost(eng, h, t)
		out = append(out, h)
	}
	return out
}

// activateGroupZero boots every host in Han's first group and marks it
// active in the policy's own group-tracking map (see policy_han.go).
func activateGroupZero(eng *Engine, p *HanPolicy, t int64) {
	hosts := p.groupHosts(eng, 0)
	for _, h := range hosts {
		activateHost(eng, h, t)
	}
	p.activeGroups[0] = true
}
