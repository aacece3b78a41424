package sim

// VM is a virtual machine: a tenant's resource request with a bounded
// lifetime. Exactly one host at a time while present.
type VM struct {
	ID  string
	Sub *Subscription

	Created int64
	Deleted int64 // Created <= Deleted; equal means instantaneous

	Cores    int64
	Memory   float64
	Category string

	// TargetVMID, if non-empty, names the VM this one is attacking.
	// TargetVM is resolved only when this VM lands on the host its target
	// is currently on (HitTarget); otherwise it stays nil.
	TargetVMID string
	TargetVM   *VM
	HitTarget  bool

	// WasColocatedWithMalicious[m] is monotonically true once this VM has
	// ever, at some point in [Created, Deleted], shared a host with a
	// malicious-in-m VM of another subscription.
	WasColocatedWithMalicious []bool

	Host      *Host // current host, nil if not yet placed or deleted
	FirstHost *Host // host this VM was first placed on
}

// NewVM creates a VM owned by sub with the given lifetime and demand.
func NewVM(id string, sub *Subscription, created, deleted int64, cores int64, memory float64, category string, numMaliciousSets int) *VM {
	return &VM{
		ID:                        id,
		Sub:                       sub,
		Created:                   created,
		Deleted:                   deleted,
		Cores:                     cores,
		Memory:                    memory,
		Category:                  category,
		WasColocatedWithMalicious: make([]bool, numMaliciousSets),
	}
}

// IsMalicious reports whether this VM's owning subscription is malicious
// in set m.
func (v *VM) IsMalicious(m int) bool {
	return v.Sub.Malicious[m]
}
