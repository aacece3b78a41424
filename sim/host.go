package sim

import (
	"fmt"
	"math/big"
)

// interval is a half-open time range [Start, End) used for a host's
// malicious-period bookkeeping. End is only meaningful once the period has
// closed; an open period is represented by it being absent from Ends.
type interval struct {
	Start int64
	End   int64
}

// Host is a physical machine with bounded core/memory capacity. Identity
// and equality are by Number. Hosts are never destroyed mid-run; they
// cycle between Active and Inactive via Boot/Shutdown.
type Host struct {
	Number int
	Cores  int64
	Memory float64

	CurrentVMs []*VM    // ordered list of currently hosted VMs
	HostedLog  []string // VM IDs ever hosted on this host, may repeat

	CoresBusy  int64
	MemoryUsed float64

	Active        bool
	Booted        int64
	everBooted    bool
	NumberOfBoots int

	BusyCoreTicks *TickAccumulator
	TotalCoreTicks *TickAccumulator
	LastEvent     int64

	IntervalBusyCoreTicks  *TickAccumulator
	IntervalTotalCoreTicks *TickAccumulator
	IntervalLastEvent      int64
	IntervalBaseline       int64

	// CurrentMaliciousVMs[m] is the number of VMs currently hosted that
	// are malicious in set m.
	CurrentMaliciousVMs []int
	// maliciousStarts/maliciousEnds[m] are parallel sorted lists of
	// malicious-period boundaries for set m. len(starts)-len(ends) is 0
	// or 1; an open period exists iff CurrentMaliciousVMs[m] > 0.
	maliciousStarts [][]int64
	maliciousEnds   [][]int64

	SubsHosted    map[string]struct{} // every subscription ever hosted here
	SubVMsHosted  map[string]int      // subscription -> currently-hosted VM count
}

// NewHost creates an inactive Host with the given identity, capacity, and
// number of malicious sets M.
func NewHost(number int, cores int64, memory float64, numMaliciousSets int) *Host {
	return &Host{
		Number:                 number,
		Cores:                  cores,
		Memory:                 memory,
		BusyCoreTicks:          NewTickAccumulator(),
		TotalCoreTicks:         NewTickAccumulator(),
		IntervalBusyCoreTicks:  NewTickAccumulator(),
		IntervalTotalCoreTicks: NewTickAccumulator(),
		CurrentMaliciousVMs:    make([]int, numMaliciousSets),
		maliciousStarts:        make([][]int64, numMaliciousSets),
		maliciousEnds:          make([][]int64, numMaliciousSets),
		SubsHosted:             make(map[string]struct{}),
		SubVMsHosted:           make(map[string]int),
	}
}

// FreeCores returns the host's unused core capacity.
func (h *Host) FreeCores() int64 { return h.Cores - h.CoresBusy }

// FreeMemory returns the host's unused memory capacity.
func (h *Host) FreeMemory() float64 { return h.Memory - h.MemoryUsed }

// HasCapacity reports whether the host (active or not) has enough free
// cores and memory for the given demand.
func (h *Host) HasCapacity(cores int64, memory float64) bool {
	return h.FreeCores() >= cores && h.FreeMemory() >= memory
}

// MaliciousPeriods returns the closed (start, end) pairs recorded for set
// m so far. An in-progress period is not included (its end is unknown).
func (h *Host) MaliciousPeriods(m int) []interval {
	n := len(h.maliciousEnds[m])
	out := make([]interval, n)
	for i := 0; i < n; i++ {
		out[i] = interval{Start: h.maliciousStarts[m][i], End: h.maliciousEnds[m][i]}
	}
	return out
}

// HasMaliciousPeriod reports whether the host ever opened a malicious
// period in set m (used by the coverage metric).
func (h *Host) HasMaliciousPeriod(m int) bool {
	return len(h.maliciousStarts[m]) > 0
}

// Boot transitions the host from Inactive to Active at time t.
func (h *Host) Boot(t int64) {
	if h.Active {
		return // §9: double-activation guard
	}
	h.Active = true
	h.Booted = t
	h.NumberOfBoots++
	h.LastEvent = t
	h.IntervalLastEvent = t
	if !h.everBooted {
		h.everBooted = true
		h.IntervalBaseline = t
	}
}

// Shutdown transitions the host from Active to Inactive at time t.
// Returns an error if the host is not active or not empty.
func (h *Host) Shutdown(t int64) error {
	if !h.Active {
		return fmt.Errorf("host %d: shutdown called while inactive", h.Number)
	}
	if len(h.CurrentVMs) != 0 {
		return fmt.Errorf("host %d: shutdown called while non-empty (%d VMs)", h.Number, len(h.CurrentVMs))
	}
	h.BusyCoreTicks.Add(t-h.LastEvent, h.CoresBusy)
	h.LastEvent = t
	h.TotalCoreTicks.Add(t-h.Booted, h.Cores)

	h.IntervalBusyCoreTicks.Add(t-h.IntervalLastEvent, h.CoresBusy)
	h.IntervalLastEvent = t
	intervalStart := maxInt64(h.Booted, h.IntervalBaseline)
	h.IntervalTotalCoreTicks.Add(t-intervalStart, h.Cores)

	h.Active = false
	return nil
}

// FlushInterval closes out the host's per-interval accumulators up to t,
// returning their totals, and resets the interval baseline to t. Called
// by the engine at each statistics tick regardless of host activity.
func (h *Host) FlushInterval(t int64) (busy, total *big.Int) {
	if h.Active {
		h.IntervalBusyCoreTicks.Add(t-h.IntervalLastEvent, h.CoresBusy)
		h.IntervalLastEvent = t
		intervalStart := maxInt64(h.Booted, h.IntervalBaseline)
		h.IntervalTotalCoreTicks.Add(t-intervalStart, h.Cores)
	}
	busyVal := h.IntervalBusyCoreTicks.Reset()
	totalVal := h.IntervalTotalCoreTicks.Reset()
	h.IntervalBaseline = t
	return busyVal, totalVal
}

// LifetimeTicks returns the host's lifetime busy/total core-ticks as of
// t, extrapolating the open tail on a still-active host without
// mutating any accumulator. Used for end-of-run metrics after Run has
// returned, when some hosts may never have been shut down.
func (h *Host) LifetimeTicks(t int64) (busy, total *big.Int) {
	busy = new(big.Int).Set(h.BusyCoreTicks.Value())
	total = new(big.Int).Set(h.TotalCoreTicks.Value())
	if h.Active {
		busy.Add(busy, big.NewInt(h.CoresBusy*(t-h.LastEvent)))
		total.Add(total, big.NewInt(h.Cores*(t-h.Booted)))
	}
	return busy, total
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// CreateVM places vm on the host at time t, applying the full §4.2
// bookkeeping sequence. Returns an error if the host lacks capacity.
func (h *Host) CreateVM(vm *VM, t int64) error {
	if !h.HasCapacity(vm.Cores, vm.Memory) {
		return fmt.Errorf("host %d: insufficient capacity for VM %s (need cores=%d mem=%.3f, free cores=%d mem=%.3f)",
			h.Number, vm.ID, vm.Cores, vm.Memory, h.FreeCores(), h.FreeMemory())
	}

	// Step 1: seen_subs / exposure / co-residency-time bookkeeping against
	// every currently hosted VM of a different subscription. Self-
	// exposure (same subscription) is explicitly skipped (§9).
	for _, other := range h.CurrentVMs {
		if other.Sub == vm.Sub {
			continue
		}
		vm.Sub.markCoresident(other.Sub.ID, t)
		other.Sub.markCoresident(vm.Sub.ID, t)
		vm.Sub.markExposed(other.Sub)
		other.Sub.markExposed(vm.Sub)
	}

	// Step 2: subscription hosting bookkeeping.
	h.SubsHosted[vm.Sub.ID] = struct{}{}
	h.SubVMsHosted[vm.Sub.ID]++

	// Step 3: malicious-period bookkeeping, per malicious set.
	for m := range h.CurrentMaliciousVMs {
		if h.CurrentMaliciousVMs[m] > 0 {
			vm.WasColocatedWithMalicious[m] = true
		}
		if vm.IsMalicious(m) {
			if h.CurrentMaliciousVMs[m] == 0 {
				h.maliciousStarts[m] = append(h.maliciousStarts[m], vm.Created)
				for _, other := range h.CurrentVMs {
					other.WasColocatedWithMalicious[m] = true
				}
			}
			h.CurrentMaliciousVMs[m]++
		}
	}

	// Step 4: flush busy-core-ticks at the old busy level, then apply the
	// new VM's demand.
	h.BusyCoreTicks.Add(t-h.LastEvent, h.CoresBusy)
	h.IntervalBusyCoreTicks.Add(t-h.IntervalLastEvent, h.CoresBusy)
	h.LastEvent = t
	h.IntervalLastEvent = t
	h.CoresBusy += vm.Cores
	h.MemoryUsed += vm.Memory

	h.CurrentVMs = append(h.CurrentVMs, vm)
	h.HostedLog = append(h.HostedLog, vm.ID)
	vm.Host = h
	if vm.FirstHost == nil {
		vm.FirstHost = h
	}
	vm.Sub.CurrentVMs[vm.ID] = vm
	vm.Sub.TotalVMs[vm.ID] = vm
	vm.Sub.onVMCreated(t)
	return nil
}

// DeleteVM removes vm from the host at time t, applying the full §4.2
// bookkeeping sequence. Returns an error if vm is not currently hosted
// here.
func (h *Host) DeleteVM(vm *VM, t int64) error {
	idx := -1
	for i, v := range h.CurrentVMs {
		if v == vm {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("host %d: DeleteVM called for VM %s not currently hosted", h.Number, vm.ID)
	}

	// Break co-residency pairs with every other VM still present, before
	// removing vm from the list.
	for _, other := range h.CurrentVMs {
		if other == vm || other.Sub == vm.Sub {
			continue
		}
		vm.Sub.unmarkCoresident(other.Sub.ID, t)
		other.Sub.unmarkCoresident(vm.Sub.ID, t)
	}

	// Step 1: malicious-period closure.
	for m := range h.CurrentMaliciousVMs {
		if vm.IsMalicious(m) {
			h.CurrentMaliciousVMs[m]--
			if h.CurrentMaliciousVMs[m] == 0 {
				h.maliciousEnds[m] = append(h.maliciousEnds[m], vm.Deleted)
			}
		}
	}

	// Step 2: subscription hosting bookkeeping (ever-hosted set is never
	// pruned).
	h.SubVMsHosted[vm.Sub.ID]--
	if h.SubVMsHosted[vm.Sub.ID] <= 0 {
		delete(h.SubVMsHosted, vm.Sub.ID)
	}

	// Step 3: flush busy-core-ticks at the pre-deletion busy level, then
	// remove the VM's demand.
	h.BusyCoreTicks.Add(t-h.LastEvent, h.CoresBusy)
	h.IntervalBusyCoreTicks.Add(t-h.IntervalLastEvent, h.CoresBusy)
	h.LastEvent = t
	h.IntervalLastEvent = t
	h.CoresBusy -= vm.Cores
	h.MemoryUsed -= vm.Memory

	h.CurrentVMs = append(h.CurrentVMs[:idx], h.CurrentVMs[idx+1:]...)
	vm.Host = nil
	delete(vm.Sub.CurrentVMs, vm.ID)
	vm.Sub.onVMDeleted(t)
	return nil
}
