package sim

import (
	"fmt"
	"math/big"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
)

// IntervalStat is one row of the time-series produced at each statistics
// tick (§4.1/§4.5's interval variants).
type IntervalStat struct {
	Time            int64
	CoreUtilization Decimal
	ActiveHosts     int
	ActiveVMs       int
	Creations       int
	Deletions       int
	Boots           int
	Shutdowns       int
}

// Engine drains two pre-sorted VM arrays (by Created, by Deleted) into
// host/subscription state mutations, firing interval-statistics callbacks
// along the way. It is single-threaded and deterministic given a seed.
type Engine struct {
	Config EngineConfig
	Hosts  []*Host
	Subs   map[string]*Subscription
	VMs    map[string]*VM
	Policy PlacementPolicy

	rng *rand.Rand

	clock   int64
	hasRun  bool

	RunningVMs       int
	MaxActiveVMs     int
	ActiveHostsCount int
	MaxActiveHosts   int
	CreationsTotal   int
	DeletionsTotal   int
	VMsWithTargets   int
	TargetHitsTotal  int // attacker VMs that landed on the same host as their declared target

	vmTicks         *TickAccumulator
	lastVMTickEvent int64

	hostBootsTotal     int
	hostShutdownsTotal int
	intervalBoots      int
	intervalShutdowns  int
	intervalCreations  int
	intervalDeletions  int

	nextStatTime int64
	Intervals    []IntervalStat
}

// NewEngine builds an Engine with Config.NumHosts hosts and the named
// placement policy; all hosts start inactive except those the policy's
// construction activates (see NewPlacementPolicy). subs must contain every subscription that will
// appear in the creation/deletion arrays passed to Run (see trace.Load).
func NewEngine(config EngineConfig, subs map[string]*Subscription) (*Engine, error) {
	if config.NumHosts < 1 {
		return nil, fmt.Errorf("engine: num_hosts must be >= 1, got %d", config.NumHosts)
	}
	seed := int64(0)
	if config.Seed != nil {
		seed = *config.Seed
	} else {
		seed = nondeterministicSeed()
	}

	hosts := make([]*Host, config.NumHosts)
	for i := range hosts {
		hosts[i] = NewHost(i, config.CoresPerHost, config.MemoryPerHost, config.NumMaliciousSets())
	}

	eng := &Engine{
		Config:  config,
		Hosts:   hosts,
		Subs:    subs,
		VMs:     make(map[string]*VM),
		rng:     NewPlacementRNG(seed),
		vmTicks: NewTickAccumulator(),
	}
	eng.nextStatTime = statMinTime(config) + config.StatInterval

	policy, err := NewPlacementPolicy(config, eng, seed)
	if err != nil {
		return nil, err
	}
	eng.Policy = policy
	return eng, nil
}

func statMinTime(c EngineConfig) int64 {
	if c.StatMinTime != 0 {
		return c.StatMinTime
	}
	return c.MinTime
}

// Run drains creations (sorted by Created) and deletions (sorted by
// Deleted) in timestamp order, creation winning ties, until both are
// exhausted. It is fatal (returns an error) if an event's timestamp
// precedes the engine's current clock, or if the configured policy
// cannot place a VM anywhere.
func (eng *Engine) Run(creations, deletions []*VM) error {
	if eng.hasRun {
		return fmt.Errorf("engine: Run called more than once")
	}
	eng.hasRun = true
	for _, vm := range creations {
		eng.VMs[vm.ID] = vm
	}

	ci, di := 0, 0
	for ci < len(creations) || di < len(deletions) {
		var evTime int64
		isCreation := false
		switch {
		case ci < len(creations) && di < len(deletions):
			if creations[ci].Created <= deletions[di].Deleted {
				evTime, isCreation = creations[ci].Created, true
			} else {
				evTime, isCreation = deletions[di].Deleted, false
			}
		case ci < len(creations):
			evTime, isCreation = creations[ci].Created, true
		default:
			evTime, isCreation = deletions[di].Deleted, false
		}

		if evTime < eng.clock {
			return fmt.Errorf("malformed trace: event at time %d precedes current clock %d", evTime, eng.clock)
		}

		for eng.nextStatTime <= evTime {
			eng.advanceClock(eng.nextStatTime)
			eng.flushStatTick()
			eng.nextStatTime += eng.Config.StatInterval
		}
		eng.advanceClock(evTime)

		if isCreation {
			vm := creations[ci]
			ci++
			if err := eng.processCreation(vm); err != nil {
				return err
			}
		} else {
			vm := deletions[di]
			di++
			if err := eng.processDeletion(vm); err != nil {
				return err
			}
		}
	}
	return nil
}

// advanceClock flushes the VM-ticks accumulator up to t using the
// running-VM count in effect since the last advance, then sets the clock.
func (eng *Engine) advanceClock(t int64) {
	if t > eng.clock {
		eng.vmTicks.Add(t-eng.lastVMTickEvent, int64(eng.RunningVMs))
	}
	eng.clock = t
	eng.lastVMTickEvent = t
}

func (eng *Engine) processCreation(vm *VM) error {
	host, err := eng.Policy.PickHost(eng, vm)
	if err != nil {
		return fmt.Errorf("placement failed for VM %s at t=%d: %w", vm.ID, eng.clock, err)
	}
	if !host.Active {
		activateHost(eng, host, eng.clock)
	}
	if err := host.CreateVM(vm, eng.clock); err != nil {
		return fmt.Errorf("capacity exhausted: %w", err)
	}
	eng.Policy.OnCreate(eng, vm, host)

	if vm.TargetVMID != "" {
		eng.VMsWithTargets++
		if target, ok := eng.VMs[vm.TargetVMID]; ok && target.Host == host {
			vm.HitTarget = true
			vm.TargetVM = target
			if vm.Sub.TargetVMs == nil {
				vm.Sub.TargetVMs = make(map[string]bool)
			}
			vm.Sub.TargetVMs[vm.ID] = true
			if vm.Sub.TargetSubscriptions == nil {
				vm.Sub.TargetSubscriptions = make(map[string]bool)
			}
			vm.Sub.TargetSubscriptions[target.Sub.ID] = true
			eng.TargetHitsTotal++
		}
	}

	eng.RunningVMs++
	if eng.RunningVMs > eng.MaxActiveVMs {
		eng.MaxActiveVMs = eng.RunningVMs
	}
	eng.CreationsTotal++
	eng.intervalCreations++
	return nil
}

func (eng *Engine) processDeletion(vm *VM) error {
	host := vm.Host
	if host == nil {
		return fmt.Errorf("malformed trace: deletion of VM %s with no current host at t=%d", vm.ID, eng.clock)
	}
	if err := host.DeleteVM(vm, eng.clock); err != nil {
		return err
	}
	deactivateIfEmpty := eng.Policy.OnDelete(eng, vm, host)
	if deactivateIfEmpty && host.Active && len(host.CurrentVMs) == 0 {
		if err := deactivateHost(eng, host, eng.clock); err != nil {
			return err
		}
	}
	eng.RunningVMs--
	eng.DeletionsTotal++
	eng.intervalDeletions++
	return nil
}

func (eng *Engine) flushStatTick() {
	busy := new(big.Int)
	total := new(big.Int)
	activeHosts := 0
	for _, h := range eng.Hosts {
		if h.Active {
			activeHosts++
		}
		b, t := h.FlushInterval(eng.clock)
		busy.Add(busy, b)
		total.Add(total, t)
	}
	ratio := RatioBigInt(busy, total, DecimalOne)
	boots, shutdowns := eng.intervalBoots, eng.intervalShutdowns
	eng.Intervals = append(eng.Intervals, IntervalStat{
		Time:            eng.clock,
		CoreUtilization: ratio,
		ActiveHosts:     activeHosts,
		ActiveVMs:       eng.RunningVMs,
		Creations:       eng.intervalCreations,
		Deletions:       eng.intervalDeletions,
		Boots:           boots,
		Shutdowns:       shutdowns,
	})
	eng.intervalCreations = 0
	eng.intervalDeletions = 0
	eng.intervalBoots = 0
	eng.intervalShutdowns = 0
	logrus.Debugf("[engine] stat tick t=%d util=%s activeHosts=%d activeVMs=%d boots=%d shutdowns=%d", eng.clock, ratio, activeHosts, eng.RunningVMs, boots, shutdowns)
}

// Clock returns the engine's current simulation clock.
func (eng *Engine) Clock() int64 { return eng.clock }

// HostBoots returns the cumulative number of host activations.
func (eng *Engine) HostBoots() int { return eng.hostBootsTotal }

// HostShutdowns returns the cumulative number of host deactivations.
func (eng *Engine) HostShutdowns() int { return eng.hostShutdownsTotal }

// VMTicks returns Σ Δt·running_vms accumulated over the whole run.
func (eng *Engine) VMTicks() *big.Int { return eng.vmTicks.Value() }

// SortedSubscriptions returns the engine's subscriptions in a stable,
// deterministic order (by ID), useful for reproducible report output.
func (eng *Engine) SortedSubscriptions() []*Subscription {
	out := make([]*Subscription, 0, len(eng.Subs))
	for _, s := range eng.Subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AvgActiveHosts returns the unweighted mean of the active-host count
// sampled at each statistics tick (ticks are equally spaced, so this is
// also the time-weighted average). An empty run (no ticks) reports 1,
// matching the core-utilization empty-trace convention (§7e).
func (eng *Engine) AvgActiveHosts() Decimal {
	if len(eng.Intervals) == 0 {
		return DecimalOne
	}
	sum := int64(0)
	for _, iv := range eng.Intervals {
		sum += int64(iv.ActiveHosts)
	}
	return Ratio(sum, int64(len(eng.Intervals)), DecimalOne)
}

// AvgActiveVMs returns the unweighted mean of the active-VM count
// sampled at each statistics tick.
func (eng *Engine) AvgActiveVMs() Decimal {
	if len(eng.Intervals) == 0 {
		return DecimalZero
	}
	sum := int64(0)
	for _, iv := range eng.Intervals {
		sum += int64(iv.ActiveVMs)
	}
	return Ratio(sum, int64(len(eng.Intervals)), DecimalZero)
}
