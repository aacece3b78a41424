package sim

import "fmt"

// LDBRPolicy (leakage-differentiated best response) assigns every
// subscription a private prior probability of maliciousness, sampled
// once from a Beta-PERT distribution the first time the subscription is
// seen, and places each VM on the eligible host minimizing the expected
// number of malicious co-residencies:
//
//	E = n · Π p_s · (1 − p_new) + (1 − Π p_s) · p_new
//
// where n is the number of VMs currently on the host that belong to other
// subscriptions, Π p_s is the product of those subscriptions' prior
// probabilities, and p_new is the
// arriving subscription's own prior. LDBR only makes sense against a
// single malicious set; constructing it against a trace with any other
// malicious-set count is a configuration error.
type LDBRPolicy struct {
	basePolicy
	maliciousPert PertSampler
	benignPert    PertSampler
	probs         map[string]float64
}

// NewLDBRPolicy builds an LDBR policy that draws each malicious-in-set-0
// subscription's prior from maliciousPert and each benign subscription's
// prior from benignPert — per §4.4, "one mode for malicious subscriptions
// and the complementary mode for benign" (the registry wires maliciousPert
// to pert_mode and benignPert to 1-pert_mode, sharing one RNG stream).
func NewLDBRPolicy(maliciousPert, benignPert PertSampler, numMaliciousSets int) (*LDBRPolicy, error) {
	if numMaliciousSets != 1 {
		return nil, fmt.Errorf("ldbr: requires exactly one malicious set, got %d", numMaliciousSets)
	}
	return &LDBRPolicy{maliciousPert: maliciousPert, benignPert: benignPert, probs: make(map[string]float64)}, nil
}

func (p *LDBRPolicy) Name() string { return "ldbr" }

// probOf returns sub's prior probability of maliciousness, sampling and
// caching it the first time sub is seen. Malicious and benign
// subscriptions draw from distinct PERT modes so the policy can actually
// differentiate them (§4.4, S5).
func (p *LDBRPolicy) probOf(sub *Subscription) float64 {
	if v, ok := p.probs[sub.ID]; ok {
		return v
	}
	var v float64
	if sub.Malicious[0] {
		v = p.maliciousPert.Sample()
	} else {
		v = p.benignPert.Sample()
	}
	p.probs[sub.ID] = v
	return v
}

func (p *LDBRPolicy) PickHost(eng *Engine, vm *VM) (*Host, error) {
	e := eligibleHosts(eng, vm)
	if len(e) == 0 {
		return pickEmptyHost(eng, vm)
	}
	pNew := p.probOf(vm.Sub)

	best := -1.0
	var tied []*Host
	for _, h := range e {
		score := p.expectedLeakage(vm.Sub, h, pNew)
		switch {
		case best < 0 || score < best:
			best = score
			tied = []*Host{h}
		case score == best:
			tied = append(tied, h)
		}
	}
	return pickRandom(eng.rng, tied), nil
}

// expectedLeakage computes the score for candidate host h: n counts the
// VMs currently on h belonging to subscriptions other than sub (VMs of
// sub's own prior instances carry the same malicious status as the
// arriving VM and contribute no independent risk); the product ranges
// over those tenants' distinct subscriptions.
func (p *LDBRPolicy) expectedLeakage(sub *Subscription, h *Host, pNew float64) float64 {
	tenants := otherTenants(sub, h)
	product := 1.0
	n := 0
	for _, t := range tenants {
		product *= p.probOf(t)
		n += h.SubVMsHosted[t.ID]
	}
	return float64(n)*product*(1-pNew) + (1-product)*pNew
}
