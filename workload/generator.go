// Package workload synthesizes attacker-trace CSV files in the §6 trace
// format, for exercising the targeted-attack reporting path without a
// real production trace.
package workload

import (
	"fmt"
	"math/rand"
)

// GenerateParams controls synthetic trace generation. Deterministic
// given the same params.Seed.
type GenerateParams struct {
	NumSubscriptions int
	NumVMs           int
	Horizon          int64

	MinCores, MaxCores   int64
	MinMemory, MaxMemory float64

	// TargetFraction is the fraction of generated VMs (after the first)
	// that carry a target_vm_id pointing at an earlier VM, simulating a
	// co-residency attack attempt.
	TargetFraction float64

	Category string
	Seed     int64
}

// Row is one synthesized VM record in the §6 trace schema.
type Row struct {
	VMID         string
	SubID        string
	DeploymentID string
	Created      int64
	Deleted      int64
	MaxCPU       float64
	AvgCPU       float64
	P95CPU       float64
	Category     string
	Cores        int64
	Memory       float64
	TargetVMID   string
}

// CSVRecord renders r in the §6 field order, omitting the trailing
// target_vm_id column when empty (optional 12th field).
func (r Row) CSVRecord() []string {
	out := []string{
		r.VMID, r.SubID, r.DeploymentID,
		fmt.Sprintf("%d", r.Created), fmt.Sprintf("%d", r.Deleted),
		fmt.Sprintf("%g", r.MaxCPU), fmt.Sprintf("%g", r.AvgCPU), fmt.Sprintf("%g", r.P95CPU),
		r.Category,
		fmt.Sprintf("%d", r.Cores), fmt.Sprintf("%g", r.Memory),
	}
	if r.TargetVMID != "" {
		out = append(out, r.TargetVMID)
	}
	return out
}

// Generate synthesizes params.NumVMs VM records with Poisson arrivals
// over [0, params.Horizon), uniformly random lifetimes and demand
// within the configured ranges, and a params.TargetFraction slice
// carrying a target_vm_id drawn from an already-generated VM.
func Generate(params GenerateParams) ([]Row, error) {
	if params.NumVMs <= 0 {
		return nil, nil
	}
	if params.NumSubscriptions <= 0 {
		return nil, fmt.Errorf("workload: num_subscriptions must be positive, got %d", params.NumSubscriptions)
	}
	if params.Horizon <= 0 {
		return nil, fmt.Errorf("workload: horizon must be positive, got %d", params.Horizon)
	}
	if params.MaxCores < params.MinCores || params.MinCores <= 0 {
		return nil, fmt.Errorf("workload: invalid cores range [%d, %d]", params.MinCores, params.MaxCores)
	}
	if params.MaxMemory < params.MinMemory || params.MinMemory <= 0 {
		return nil, fmt.Errorf("workload: invalid memory range [%g, %g]", params.MinMemory, params.MaxMemory)
	}

	rng := rand.New(rand.NewSource(params.Seed))
	rate := float64(params.NumVMs) / float64(params.Horizon)

	rows := make([]Row, 0, params.NumVMs)
	clock := int64(0)
	for i := 0; i < params.NumVMs && clock < params.Horizon; i++ {
		iat := int64(rng.ExpFloat64() / rate)
		clock += iat
		if clock >= params.Horizon {
			break
		}
		lifetime := int64(rng.Float64()*float64(params.Horizon-clock)) + 1
		deleted := clock + lifetime
		if deleted > params.Horizon {
			deleted = params.Horizon
		}

		row := Row{
			VMID:         fmt.Sprintf("v%d", i),
			SubID:        fmt.Sprintf("s%d", rng.Intn(params.NumSubscriptions)),
			DeploymentID: "d0",
			Created:      clock,
			Deleted:      deleted,
			Category:     params.Category,
			Cores:        params.MinCores + rng.Int63n(params.MaxCores-params.MinCores+1),
			Memory:       params.MinMemory + rng.Float64()*(params.MaxMemory-params.MinMemory),
		}
		if i > 0 && rng.Float64() < params.TargetFraction {
			row.TargetVMID = rows[rng.Intn(len(rows))].VMID
		}
		rows = append(rows, row)
	}
	return rows, nil
}
