package sim

// BestFit selects, from the active hosts with capacity (E), those
// minimizing free cores, breaking ties uniformly at random. Falls back
// to an empty (inactive) host when E is empty.
type BestFit struct{ basePolicy }

func NewBestFit() *BestFit { return &BestFit{} }

func (p *BestFit) Name() string { return "best-fit" }

func (p *BestFit) PickHost(eng *Engine, vm *VM) (*Host, error) {
	e := eligibleHosts(eng, vm)
	if len(e) == 0 {
		return pickEmptyHost(eng, vm)
	}
	tied := minFreeCoresTies(e)
	return pickRandom(eng.rng, tied), nil
}

// minFreeCoresTies returns the subset of hosts minimizing FreeCores().
func minFreeCoresTies(hosts []*Host) []*Host {
	best := hosts[0].FreeCores()
	for _, h := range hosts[1:] {
		if h.FreeCores() < best {
			best = h.FreeCores()
		}
	}
	out := make([]*Host, 0, len(hosts))
	for _, h := range hosts {
		if h.FreeCores() == best {
			out = append(out, h)
		}
	}
	return out
}

// maxFreeCoresTies returns the subset of hosts maximizing FreeCores().
func maxFreeCoresTies(hosts []*Host) []*Host {
	best := hosts[0].FreeCores()
	for _, h := range hosts[1:] {
		if h.FreeCores() > best {
			best = h.FreeCores()
		}
	}
	out := make([]*Host, 0, len(hosts))
	for _, h := range hosts {
		if h.FreeCores() == best {
			out = append(out, h)
		}
	}
	return out
}
