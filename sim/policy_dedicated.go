package sim

// DedicatedInstance places a VM on an active host that currently hosts
// only that VM's subscription, preferring the one with the fewest free
// cores among such hosts. A host hosting any other subscription is
// skipped even if it has fewer free cores. Falls back to an empty host
// when no dedicated host has capacity.
type DedicatedInstance struct{ basePolicy }

func NewDedicatedInstance() *DedicatedInstance { return &DedicatedInstance{} }

func (p *DedicatedInstance) Name() string { return "dedicated-instance" }

func (p *DedicatedInstance) PickHost(eng *Engine, vm *VM) (*Host, error) {
	candidates := make([]*Host, 0)
	for _, h := range eng.Hosts {
		if !h.Active || !h.HasCapacity(vm.Cores, vm.Memory) {
			continue
		}
		if len(h.SubVMsHosted) == 1 {
			if _, ok := h.SubVMsHosted[vm.Sub.ID]; ok {
				candidates = append(candidates, h)
			}
		}
	}
	if len(candidates) == 0 {
		return pickEmptyHost(eng, vm)
	}
	tied := minFreeCoresTies(candidates)
	return pickRandom(eng.rng, tied), nil
}
