package sim

// AgarwalPCUF (Agarwal's "pack on co-resident, unseen-free" heuristic)
// restricts E to hosts whose every current tenant has already been seen
// by the VM's subscription, then picks the minimum-free-cores host among
// those. A brand-new subscription (no VMs placed yet) has nothing to
// compare against, so it picks uniformly from E.
type AgarwalPCUF struct{ basePolicy }

func NewAgarwalPCUF() *AgarwalPCUF { return &AgarwalPCUF{} }

func (p *AgarwalPCUF) Name() string { return "agarwal-pcuf" }

func (p *AgarwalPCUF) PickHost(eng *Engine, vm *VM) (*Host, error) {
	e := eligibleHosts(eng, vm)
	if len(e) == 0 {
		return pickEmptyHost(eng, vm)
	}
	if len(vm.Sub.TotalVMs) == 0 {
		return pickRandom(eng.rng, e), nil
	}
	retained := make([]*Host, 0, len(e))
	for _, h := range e {
		if allSeen(vm.Sub, h) {
			retained = append(retained, h)
		}
	}
	if len(retained) == 0 {
		return pickEmptyHost(eng, vm)
	}
	tied := minFreeCoresTies(retained)
	return pickRandom(eng.rng, tied), nil
}

// allSeen reports whether every subscription currently hosted on h (other
// than sub itself) has already been co-resident with sub at some point.
func allSeen(sub *Subscription, h *Host) bool {
	for otherID := range h.SubVMsHosted {
		if otherID == sub.ID {
			continue
		}
		if _, ok := sub.SeenSubs[otherID]; !ok {
			return false
		}
	}
	return true
}
