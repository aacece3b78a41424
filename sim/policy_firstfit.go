package sim

import "fmt"

// FirstFit scans all hosts (active or inactive) in index order and
// returns the first with capacity for the VM.
type FirstFit struct{ basePolicy }

func NewFirstFit() *FirstFit { return &FirstFit{} }

func (p *FirstFit) Name() string { return "first-fit" }

func (p *FirstFit) PickHost(eng *Engine, vm *VM) (*Host, error) {
	for _, h := range eng.Hosts {
		if h.HasCapacity(vm.Cores, vm.Memory) {
			return h, nil
		}
	}
	return nil, fmt.Errorf("first-fit: no host has capacity for VM %s", vm.ID)
}
