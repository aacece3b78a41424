package sim

// WorstFit selects, from the active hosts with capacity (E), those
// maximizing free cores, breaking ties uniformly at random. Falls back
// to an empty (inactive) host when E is empty.
type WorstFit struct{ basePolicy }

func NewWorstFit() *WorstFit { return &WorstFit{} }

func (p *WorstFit) Name() string { return "worst-fit" }

func (p *WorstFit) PickHost(eng *Engine, vm *VM) (*Host, error) {
	e := eligibleHosts(eng, vm)
	if len(e) == 0 {
		return pickEmptyHost(eng, vm)
	}
	tied := maxFreeCoresTies(e)
	return pickRandom(eng.rng, tied), nil
}
