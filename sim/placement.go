package sim

import (
	"fmt"
	"math/rand"
)

// PlacementPolicy decides which host a newly created VM should land on,
// and hooks the engine's create/delete path for policies that need to
// maintain their own auxiliary state (Azar's full-host set, Han's group
// membership, next-fit's cursor...).
//
// PickHost must return either an already-active host with enough free
// capacity, or an inactive host with enough capacity (the engine will
// activate it). Implementations may call the framework helpers below.
type PlacementPolicy interface {
	Name() string
	PickHost(eng *Engine, vm *VM) (*Host, error)
	// OnCreate runs after the engine has placed vm on host.
	OnCreate(eng *Engine, vm *VM, host *Host)
	// OnDelete runs after the engine has removed vm from host, and
	// decides whether the engine should deactivate host if it is now
	// empty. Most policies return true unconditionally; Han/HanKeepOn
	// override this to keep whole groups on or off together.
	OnDelete(eng *Engine, vm *VM, host *Host) (deactivateIfEmpty bool)
}

// basePolicy provides the default OnCreate/OnDelete no-ops so concrete
// policies only need to implement the methods they care about.
type basePolicy struct{}

func (basePolicy) OnCreate(*Engine, *VM, *Host) {}
func (basePolicy) OnDelete(*Engine, *VM, *Host) bool { return true }

// eligibleHosts returns the active hosts with enough free capacity for
// vm, in host-index order.
func eligibleHosts(eng *Engine, vm *VM) []*Host {
	out := make([]*Host, 0)
	for _, h := range eng.Hosts {
		if h.Active && h.HasCapacity(vm.Cores, vm.Memory) {
			out = append(out, h)
		}
	}
	return out
}

// pickEmptyHost returns a uniformly random inactive host with sufficient
// capacity for vm, or an error if none exists (fatal: the trace exceeds
// simulated capacity).
func pickEmptyHost(eng *Engine, vm *VM) (*Host, error) {
	candidates := make([]*Host, 0)
	for _, h := range eng.Hosts {
		if !h.Active && h.HasCapacity(vm.Cores, vm.Memory) {
			candidates = append(candidates, h)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no inactive host with capacity for VM %s (cores=%d mem=%.3f): trace exceeds simulated capacity",
			vm.ID, vm.Cores, vm.Memory)
	}
	return pickRandom(eng.rng, candidates), nil
}

// pickRandom returns a uniformly random element of a non-empty slice,
// drawing from the engine's placement RNG.
func pickRandom(rng *rand.Rand, hosts []*Host) *Host {
	return hosts[rng.Intn(len(hosts))]
}

// activateHost boots host at time t if it is not already active (§9:
// double-activation is guarded here, not just in Host.Boot, so callers
// never double-count a boot in per-interval counters layered on top).
func activateHost(eng *Engine, host *Host, t int64) {
	if host.Active {
		return
	}
	host.Boot(t)
	eng.hostBootsTotal++
	eng.intervalBoots++
	eng.ActiveHostsCount++
	if eng.ActiveHostsCount > eng.MaxActiveHosts {
		eng.MaxActiveHosts = eng.ActiveHostsCount
	}
}

// deactivateHost shuts down an empty active host at time t.
func deactivateHost(eng *Engine, host *Host, t int64) error {
	if !host.Active || len(host.CurrentVMs) != 0 {
		return nil
	}
	if err := host.Shutdown(t); err != nil {
		return err
	}
	eng.hostShutdownsTotal++
	eng.intervalShutdowns++
	eng.ActiveHostsCount--
	return nil
}

// deactivateEmptyHosts deactivates up to k currently empty active hosts,
// returning the number actually deactivated.
func deactivateEmptyHosts(eng *Engine, k int, t int64) int {
	n := 0
	for _, h := range eng.Hosts {
		if n >= k {
			break
		}
		if h.Active && len(h.CurrentVMs) == 0 {
			if err := deactivateHost(eng, h, t); err == nil {
				n++
			}
		}
	}
	return n
}
