package sim

import "fmt"

// HanPolicy partitions the host fleet into fixed-size groups (size
// GroupSize) and activates groups whole: only one group at a time needs
// to be "open" for new placements. A VM first tries a host already
// hosting the same subscription (below a per-host subscription-VM cap
// NStar, limiting how much of one tenant a single host can absorb), then
// a host with capacity in the lowest-numbered active group that has never
// hosted the subscription (NPSS: non-preferred-subscription-sharing), then
// activates the next inactive group.
//
// KeepOn controls deactivation: Han-PSSF deactivates each host as soon as
// it empties and shuts down the rest of a group as soon as the group's
// last VM is deleted, while Han-KeepOn leaves emptied hosts active until
// every host in the group is simultaneously empty, keeping group churn
// low at the cost of idle capacity.
type HanPolicy struct {
	basePolicy
	GroupSize int64
	NStar     int64
	KeepOn    bool

	// activeGroups tracks group-level activation independent of any one
	// host's current Active flag: under Han-PSSF, hosts inside an active
	// group deactivate individually as they empty, so checking a single
	// representative host (e.g. the group's first) would misreport the
	// group as inactive while siblings still carry VMs.
	activeGroups map[int]bool
}

func NewHanPolicy(groupSize, nStar int64, keepOn bool) *HanPolicy {
	return &HanPolicy{GroupSize: groupSize, NStar: nStar, KeepOn: keepOn, activeGroups: make(map[int]bool)}
}

func (p *HanPolicy) Name() string {
	if p.KeepOn {
		return "han-keepon"
	}
	return "han-pssf"
}

func (p *HanPolicy) groupOf(host *Host) int {
	return host.Number / int(p.GroupSize)
}

func (p *HanPolicy) groupHosts(eng *Engine, group int) []*Host {
	start := group * int(p.GroupSize)
	end := start + int(p.GroupSize)
	if end > len(eng.Hosts) {
		end = len(eng.Hosts)
	}
	if start >= end {
		return nil
	}
	return eng.Hosts[start:end]
}

func (p *HanPolicy) numGroups(eng *Engine) int {
	n := len(eng.Hosts) / int(p.GroupSize)
	if len(eng.Hosts)%int(p.GroupSize) != 0 {
		n++
	}
	return n
}

func (p *HanPolicy) PickHost(eng *Engine, vm *VM) (*Host, error) {
	if host := p.pickSameSubUnderCap(eng, vm); host != nil {
		return host, nil
	}
	if host := p.pickLowestActiveGroup(eng, vm); host != nil {
		return host, nil
	}
	return p.activateNextGroup(eng, vm)
}

// pickSameSubUnderCap prefers a host that already hosts vm's subscription
// but not yet NStar VMs of it, minimizing free cores among those.
func (p *HanPolicy) pickSameSubUnderCap(eng *Engine, vm *VM) *Host {
	candidates := make([]*Host, 0)
	for _, h := range eng.Hosts {
		if !h.Active || !h.HasCapacity(vm.Cores, vm.Memory) {
			continue
		}
		if n, ok := h.SubVMsHosted[vm.Sub.ID]; ok && int64(n) < p.NStar {
			candidates = append(candidates, h)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	tied := minFreeCoresTies(candidates)
	return pickRandom(eng.rng, tied)
}

// pickLowestActiveGroup scans active groups in ascending order for hosts
// that have never hosted vm's subscription (NPSS) and have capacity,
// returning one maximizing free cores within the first such group found.
func (p *HanPolicy) pickLowestActiveGroup(eng *Engine, vm *VM) *Host {
	for g := 0; g < p.numGroups(eng); g++ {
		if !p.activeGroups[g] {
			continue
		}
		hosts := p.groupHosts(eng, g)
		if len(hosts) == 0 {
			continue
		}
		candidates := make([]*Host, 0, len(hosts))
		for _, h := range hosts {
			if !h.Active || !h.HasCapacity(vm.Cores, vm.Memory) {
				continue
			}
			if _, hosted := h.SubsHosted[vm.Sub.ID]; hosted {
				continue
			}
			candidates = append(candidates, h)
		}
		if len(candidates) > 0 {
			tied := maxFreeCoresTies(candidates)
			return pickRandom(eng.rng, tied)
		}
	}
	return nil
}

// activateNextGroup activates the lowest-numbered inactive group that has
// a host with capacity for vm, booting every host in it, and returns that
// group's first host with capacity.
func (p *HanPolicy) activateNextGroup(eng *Engine, vm *VM) (*Host, error) {
	for g := 0; g < p.numGroups(eng); g++ {
		if p.activeGroups[g] {
			continue
		}
		hosts := p.groupHosts(eng, g)
		if len(hosts) == 0 {
			continue
		}
		var chosen *Host
		for _, h := range hosts {
			if h.HasCapacity(vm.Cores, vm.Memory) {
				chosen = h
				break
			}
		}
		if chosen == nil {
			continue
		}
		// Groups activate as a unit: booting every host in the group now
		// means the next VM sees the whole group active, not just the
		// one host this VM happened to land on.
		for _, h := range hosts {
			activateHost(eng, h, eng.Clock())
		}
		p.activeGroups[g] = true
		return chosen, nil
	}
	return nil, fmt.Errorf("han: no inactive group has a host with capacity for VM %s (cores=%d mem=%.3f)",
		vm.ID, vm.Cores, vm.Memory)
}

func (p *HanPolicy) OnCreate(eng *Engine, vm *VM, host *Host) {}

// OnDelete lets the engine deactivate an emptied host immediately under
// Han-PSSF. Under Han-KeepOn, the engine's default per-host deactivation
// is suppressed. Either way, once every host in the group is
// simultaneously empty, every host of the group still active is shut
// down and the group is marked inactive so it becomes eligible again for
// activateNextGroup and is skipped by pickLowestActiveGroup.
func (p *HanPolicy) OnDelete(eng *Engine, vm *VM, host *Host) bool {
	group := p.groupOf(host)
	hosts := p.groupHosts(eng, group)
	allEmpty := true
	for _, h := range hosts {
		if len(h.CurrentVMs) != 0 {
			allEmpty = false
			break
		}
	}

	if !p.KeepOn {
		if allEmpty {
			for _, h := range hosts {
				if h.Active {
					_ = deactivateHost(eng, h, eng.Clock())
				}
			}
			p.activeGroups[group] = false
		}
		return true
	}

	if !allEmpty {
		return false
	}
	for _, h := range hosts {
		if h.Active {
			_ = deactivateHost(eng, h, eng.Clock())
		}
	}
	p.activeGroups[group] = false
	return false
}
