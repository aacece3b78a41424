package sim

// RandomActive picks uniformly at random from the active hosts with
// capacity (E), falling back to an empty (inactive) host when E is
// empty.
type RandomActive struct{ basePolicy }

func NewRandomActive() *RandomActive { return &RandomActive{} }

func (p *RandomActive) Name() string { return "random-active" }

func (p *RandomActive) PickHost(eng *Engine, vm *VM) (*Host, error) {
	e := eligibleHosts(eng, vm)
	if len(e) == 0 {
		return pickEmptyHost(eng, vm)
	}
	return pickRandom(eng.rng, e), nil
}
