package sim

import "fmt"

// NextFit is like FirstFit but resumes scanning from the index after the
// previously chosen host, wrapping around, remembering the last chosen
// index across calls.
type NextFit struct {
	basePolicy
	lastIdx int
}

func NewNextFit() *NextFit { return &NextFit{lastIdx: -1} }

func (p *NextFit) Name() string { return "next-fit" }

func (p *NextFit) PickHost(eng *Engine, vm *VM) (*Host, error) {
	n := len(eng.Hosts)
	start := (p.lastIdx + 1) % n
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		h := eng.Hosts[idx]
		if h.HasCapacity(vm.Cores, vm.Memory) {
			p.lastIdx = idx
			return h, nil
		}
	}
	return nil, fmt.Errorf("next-fit: no host has capacity for VM %s", vm.ID)
}
