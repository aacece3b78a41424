package sim

// KnownProportion scores each eligible host by the proportion of its
// current tenants that the arriving VM's subscription has already been
// co-resident with — tenants counted as distinct subscriptions when
// SubscriptionBased is set, or as individual VMs otherwise — and retains
// the hosts with the maximum proportion (ties preserved). If the maximum
// is zero and LowestAvgSeenForNewSubs is set, the candidate set is
// replaced with the hosts whose tenants have, on average, the fewest
// prior acquaintances, to minimize a newcomer's exposure to
// well-connected tenants. The final pick minimizes free cores among
// whichever set was retained, with uniform tie-break. A brand-new
// subscription (no VMs placed yet) skips straight to a uniform pick over
// E, since it has no placement history to score against.
type KnownProportion struct {
	basePolicy
	SubscriptionBased       bool
	LowestAvgSeenForNewSubs bool
}

func NewKnownProportion(subscriptionBased, lowestAvgSeenForNewSubs bool) *KnownProportion {
	return &KnownProportion{
		SubscriptionBased:       subscriptionBased,
		LowestAvgSeenForNewSubs: lowestAvgSeenForNewSubs,
	}
}

func (p *KnownProportion) Name() string { return "known-proportion" }

func (p *KnownProportion) PickHost(eng *Engine, vm *VM) (*Host, error) {
	e := eligibleHosts(eng, vm)
	if len(e) == 0 {
		return pickEmptyHost(eng, vm)
	}
	if len(vm.Sub.TotalVMs) == 0 {
		return pickRandom(eng.rng, e), nil
	}

	best := -1.0
	var retained []*Host
	for _, h := range e {
		prop := p.proportionKnown(vm.Sub, h)
		switch {
		case prop > best:
			best = prop
			retained = []*Host{h}
		case prop == best:
			retained = append(retained, h)
		}
	}

	if best == 0 && p.LowestAvgSeenForNewSubs {
		retained = lowestAvgAcquaintanceHosts(vm.Sub, e)
	}

	tied := minFreeCoresTies(retained)
	return pickRandom(eng.rng, tied), nil
}

// proportionKnown returns the fraction of h's current tenants already
// seen by sub: over distinct tenant subscriptions when SubscriptionBased,
// over individual tenant VMs otherwise. Returns 0 when h has no tenants.
func (p *KnownProportion) proportionKnown(sub *Subscription, h *Host) float64 {
	if p.SubscriptionBased {
		tenants := otherTenants(sub, h)
		if len(tenants) == 0 {
			return 0
		}
		known := 0
		for _, other := range tenants {
			if _, ok := sub.SeenSubs[other.ID]; ok {
				known++
			}
		}
		return float64(known) / float64(len(tenants))
	}

	total, known := 0, 0
	for _, v := range h.CurrentVMs {
		if v.Sub.ID == sub.ID {
			continue
		}
		total++
		if _, ok := sub.SeenSubs[v.Sub.ID]; ok {
			known++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(known) / float64(total)
}

// otherTenants returns the distinct subscriptions currently hosted on h
// other than sub, in deterministic first-seen order.
func otherTenants(sub *Subscription, h *Host) []*Subscription {
	seen := make(map[string]struct{}, len(h.SubVMsHosted))
	out := make([]*Subscription, 0, len(h.SubVMsHosted))
	for _, v := range h.CurrentVMs {
		if v.Sub.ID == sub.ID {
			continue
		}
		if _, ok := seen[v.Sub.ID]; ok {
			continue
		}
		seen[v.Sub.ID] = struct{}{}
		out = append(out, v.Sub)
	}
	return out
}

// lowestAvgAcquaintanceHosts returns the subset of candidates whose
// tenants have the lowest average count of previously-seen subscriptions
// (a host with no tenants scores 0, the lowest possible).
func lowestAvgAcquaintanceHosts(sub *Subscription, candidates []*Host) []*Host {
	best := -1.0
	var out []*Host
	for _, h := range candidates {
		avg := avgTenantAcquaintance(sub, h)
		switch {
		case best < 0 || avg < best:
			best = avg
			out = []*Host{h}
		case avg == best:
			out = append(out, h)
		}
	}
	return out
}

// avgTenantAcquaintance returns the average number of distinct
// subscriptions each of h's current tenants (excluding sub) has itself
// been co-resident with. Returns 0 when h has no other tenants.
func avgTenantAcquaintance(sub *Subscription, h *Host) float64 {
	tenants := otherTenants(sub, h)
	if len(tenants) == 0 {
		return 0
	}
	sum := 0
	for _, other := range tenants {
		sum += len(other.SeenSubs)
	}
	return float64(sum) / float64(len(tenants))
}
