package sim

// Subscription is a tenant: the owner of one or more VMs across time.
// Created lazily on the first VM of a given subscription ID seen in the
// trace; never destroyed mid-run.
type Subscription struct {
	ID                 string
	TimeFirstVMCreated int64

	// Malicious is a per-malicious-set flag vector. Malicious[m] is true
	// iff this subscription is labelled malicious in set m.
	Malicious []bool

	CurrentVMs map[string]*VM
	TotalVMs   map[string]*VM

	// SeenSubs is the set of other subscriptions ever co-resident with
	// this one, symmetric by construction (both sides are updated
	// together in Host.CreateVM).
	SeenSubs map[string]struct{}

	// ExposedToMaliciousSub[m] is monotonically true once any VM of this
	// subscription is ever co-resident with a malicious-in-m VM of
	// another subscription. Never cleared.
	ExposedToMaliciousSub []bool

	// ActiveTime is the cumulative time this subscription had >=1 running
	// VM, updated at the moment the active-VM count transitions to/from
	// zero (see onVMCreated/onVMDeleted, called from Host.CreateVM/DeleteVM).
	ActiveTime    int64
	activeSince   int64
	currentlyActive bool

	// CoresidentTime[otherSubID] is the total time some VM of this
	// subscription overlapped with some VM of otherSubID on any host.
	CoresidentTime map[string]int64
	// CurrentlyCoresSubs[otherSubID] is the current co-residency
	// multiplicity (number of live same-host VM pairs). Never contains
	// the subscription's own ID.
	CurrentlyCoresSubs map[string]int
	coresidentSince    map[string]int64

	// Target maps used by attack-simulation reporting (§11.1 of
	// SPEC_FULL.md); nil unless the trace carries target annotations.
	TargetVMs            map[string]bool
	TargetSubscriptions  map[string]bool
}

// NewSubscription creates a Subscription with the given ID, first-seen
// time, and number of malicious sets M.
func NewSubscription(id string, timeFirstVMCreated int64, numMaliciousSets int) *Subscription {
	return &Subscription{
		ID:                    id,
		TimeFirstVMCreated:    timeFirstVMCreated,
		Malicious:             make([]bool, numMaliciousSets),
		CurrentVMs:            make(map[string]*VM),
		TotalVMs:              make(map[string]*VM),
		SeenSubs:              make(map[string]struct{}),
		ExposedToMaliciousSub: make([]bool, numMaliciousSets),
		CoresidentTime:        make(map[string]int64),
		CurrentlyCoresSubs:    make(map[string]int),
		coresidentSince:       make(map[string]int64),
	}
}

// IsActive reports whether the subscription currently has at least one
// running VM.
func (s *Subscription) IsActive() bool {
	return len(s.CurrentVMs) > 0
}

// onVMCreated updates active-time bookkeeping when a VM is added.
func (s *Subscription) onVMCreated(t int64) {
	if !s.currentlyActive {
		s.currentlyActive = true
		s.activeSince = t
	}
}

// onVMDeleted updates active-time bookkeeping when a VM is removed; call
// after the VM has been removed from CurrentVMs.
func (s *Subscription) onVMDeleted(t int64) {
	if s.currentlyActive && len(s.CurrentVMs) == 0 {
		s.ActiveTime += t - s.activeSince
		s.currentlyActive = false
	}
}

// markCoresident records the start of a co-residency period with
// otherSubID when the multiplicity transitions from 0 to 1.
func (s *Subscription) markCoresident(otherSubID string, t int64) {
	if otherSubID == s.ID {
		return
	}
	s.CurrentlyCoresSubs[otherSubID]++
	if s.CurrentlyCoresSubs[otherSubID] == 1 {
		s.coresidentSince[otherSubID] = t
	}
	s.SeenSubs[otherSubID] = struct{}{}
}

// unmarkCoresident records the end of a co-residency period with
// otherSubID when the multiplicity transitions back to 0.
func (s *Subscription) unmarkCoresident(otherSubID string, t int64) {
	if otherSubID == s.ID {
		return
	}
	n := s.CurrentlyCoresSubs[otherSubID]
	if n <= 0 {
		return
	}
	n--
	if n == 0 {
		delete(s.CurrentlyCoresSubs, otherSubID)
		since := s.coresidentSince[otherSubID]
		s.CoresidentTime[otherSubID] += t - since
		delete(s.coresidentSince, otherSubID)
	} else {
		s.CurrentlyCoresSubs[otherSubID] = n
	}
}

// markExposed sets ExposedToMaliciousSub[m] for every malicious set m in
// which other is malicious. Monotonic: never clears a bit.
func (s *Subscription) markExposed(other *Subscription) {
	for m, mal := range other.Malicious {
		if mal {
			s.ExposedToMaliciousSub[m] = true
		}
	}
}
