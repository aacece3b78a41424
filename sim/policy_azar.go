package sim

// AzarPolicy bounds the number of distinct hosts any tenant can ever
// share by keeping a target of A "open" active hosts in rotation for
// standard-sized VMs, while oversized VMs (ones that would not fit the
// standard unit used to define openness) are free to land on any host
// with capacity. A host leaves the open set once it no longer has room
// for one more standard unit, and a replacement is activated to keep the
// open set at size A; a host rejoins the open set once it frees enough
// capacity again.
type AzarPolicy struct {
	basePolicy
	A          int
	MaxCores   int64
	MaxMemory  float64
	open, full *orderedHostSet
}

// NewAzarPolicy constructs an Azar policy targeting A open hosts, where a
// host is considered open so long as it has room for one more VM of size
// (maxCores, maxMemory) — the "standard" unit used by the trace.
func NewAzarPolicy(a int, maxCores int64, maxMemory float64) *AzarPolicy {
	return &AzarPolicy{
		A:         a,
		MaxCores:  maxCores,
		MaxMemory: maxMemory,
		open:      &orderedHostSet{},
		full:      &orderedHostSet{},
	}
}

func (p *AzarPolicy) Name() string { return "azar" }

// Seed registers hosts that were activated before the policy placed any
// VM (the engine's initial warm-up activation) as open.
func (p *AzarPolicy) Seed(hosts []*Host) {
	for _, h := range hosts {
		p.open.Add(h.Number)
	}
}

func (p *AzarPolicy) isOversized(vm *VM) bool {
	return vm.Cores > p.MaxCores || vm.Memory > p.MaxMemory
}

func (p *AzarPolicy) PickHost(eng *Engine, vm *VM) (*Host, error) {
	if !p.isOversized(vm) {
		candidates := make([]*Host, 0, p.open.Len())
		p.open.Each(func(n int) {
			h := eng.Hosts[n]
			if h.HasCapacity(vm.Cores, vm.Memory) {
				candidates = append(candidates, h)
			}
		})
		if len(candidates) > 0 {
			return pickRandom(eng.rng, candidates), nil
		}
		return pickEmptyHost(eng, vm)
	}

	e := eligibleHosts(eng, vm)
	_, hasInactive := anyInactiveHost(eng)
	if (p.A == 0 || eng.rng.Intn(p.A) < len(e)) || !hasInactive {
		if len(e) > 0 {
			tied := minFreeCoresTies(e)
			return pickRandom(eng.rng, tied), nil
		}
	}
	return pickEmptyHost(eng, vm)
}

func (p *AzarPolicy) OnCreate(eng *Engine, vm *VM, host *Host) {
	n := host.Number
	if !p.open.Contains(n) && !p.full.Contains(n) {
		p.open.Add(n)
	}
	if p.open.Contains(n) && !host.HasCapacity(p.MaxCores, p.MaxMemory) {
		p.open.Remove(n)
		p.full.Add(n)
		p.replenishOpen(eng)
	}
}

// replenishOpen activates empty hosts until the open set returns to
// target size A, or no inactive host remains.
func (p *AzarPolicy) replenishOpen(eng *Engine) {
	for p.open.Len() < p.A {
		h, ok := anyInactiveHost(eng)
		if !ok {
			return
		}
		activateHost(eng, h, eng.Clock())
		p.open.Add(h.Number)
	}
}

func (p *AzarPolicy) OnDelete(eng *Engine, vm *VM, host *Host) bool {
	n := host.Number
	if p.full.Contains(n) && host.HasCapacity(p.MaxCores, p.MaxMemory) {
		p.full.Remove(n)
		p.open.Add(n)
	}
	p.shedExcessOpen(eng)
	return false
}

// shedExcessOpen deactivates empty open hosts beyond the target A, in
// ascending host-number order.
func (p *AzarPolicy) shedExcessOpen(eng *Engine) {
	excess := p.open.Len() - p.A
	if excess <= 0 {
		return
	}
	toRemove := make([]int, 0, excess)
	p.open.Each(func(n int) {
		if len(toRemove) >= excess {
			return
		}
		h := eng.Hosts[n]
		if h.Active && len(h.CurrentVMs) == 0 {
			toRemove = append(toRemove, n)
		}
	})
	for _, n := range toRemove {
		h := eng.Hosts[n]
		if err := deactivateHost(eng, h, eng.Clock()); err == nil {
			p.open.Remove(n)
		}
	}
}

// anyInactiveHost returns an arbitrary inactive host (the lowest-numbered
// one) regardless of capacity, for warm-up activation where no specific
// VM size is being placed.
func anyInactiveHost(eng *Engine) (*Host, bool) {
	for _, h := range eng.Hosts {
		if !h.Active {
			return h, true
		}
	}
	return nil, false
}
