// Package trace loads the CSV VM trace format of the simulator's
// external interface into the entity graph the engine operates on.
package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/coloc-sim/coloc-sim/sim"
)

// fieldCount is the number of required leading columns; an optional
// trailing target_vm_id column may follow.
const fieldCount = 11

// LoadResult is the parsed and labeled entity graph ready to hand to
// sim.NewEngine/Engine.Run.
type LoadResult struct {
	Creations []*sim.VM
	Deletions []*sim.VM
	Subs      map[string]*sim.Subscription
}

// Load reads the main trace file plus any configured
// malicious-subscription files, labels subscriptions malicious per
// config.MaliciousProportions using a generator seeded directly from
// seed, applies the optional subscription-ID rewrite, and returns the
// creation/deletion streams sorted (stably) by timestamp.
func Load(config sim.EngineConfig, mainFile string, seed int64) (*LoadResult, error) {
	subs := make(map[string]*sim.Subscription)
	vms := make(map[string]*sim.VM)
	var order []*sim.VM

	forced := make(map[string]bool)

	if err := loadFile(mainFile, config, subs, vms, &order, nil); err != nil {
		return nil, fmt.Errorf("trace: loading %s: %w", mainFile, err)
	}
	for _, f := range config.MaliciousSubscriptionFiles {
		if err := loadFile(f, config, subs, vms, &order, forced); err != nil {
			return nil, fmt.Errorf("trace: loading malicious file %s: %w", f, err)
		}
	}

	labelMalicious(subs, forced, config.MaliciousProportions, seed)

	creations := append([]*sim.VM(nil), order...)
	deletions := append([]*sim.VM(nil), order...)
	sort.SliceStable(creations, func(i, j int) bool { return creations[i].Created < creations[j].Created })
	sort.SliceStable(deletions, func(i, j int) bool { return deletions[i].Deleted < deletions[j].Deleted })

	if config.ReplaceMaliciousSubscriptionID != "" {
		rewriteForcedSubscription(config, subs, order, forced)
	}

	return &LoadResult{Creations: creations, Deletions: deletions, Subs: subs}, nil
}

// loadFile parses one CSV trace file, creating subscriptions and VMs as
// needed. If forced is non-nil, every subscription that owns a VM in
// this file is recorded there (used for malicious_subscription_files).
func loadFile(path string, config sim.EngineConfig, subs map[string]*sim.Subscription, vms map[string]*sim.VM, order *[]*sim.VM, forced map[string]bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	seenInFile := make(map[string]bool)
	n := config.NumMaliciousSets()

	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if len(record) < fieldCount {
			return fmt.Errorf("row has %d fields, want at least %d: %v", len(record), fieldCount, record)
		}

		coresTok := strings.TrimSpace(record[9])
		memTok := strings.TrimSpace(record[10])
		if strings.Contains(coresTok, ">") || strings.Contains(memTok, ">") {
			continue
		}

		vmID := record[0]
		subID := record[1]
		created, err := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
		if err != nil {
			return fmt.Errorf("vm %s: bad time_created: %w", vmID, err)
		}
		deleted, err := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 64)
		if err != nil {
			return fmt.Errorf("vm %s: bad time_deleted: %w", vmID, err)
		}
		if created < config.MinTime || deleted > config.MaxTime {
			continue
		}

		cores, err := strconv.ParseInt(coresTok, 10, 64)
		if err != nil {
			return fmt.Errorf("vm %s: bad cores: %w", vmID, err)
		}
		memory, err := strconv.ParseFloat(memTok, 64)
		if err != nil {
			return fmt.Errorf("vm %s: bad memory: %w", vmID, err)
		}
		category := record[8]

		if seenInFile[vmID] {
			return fmt.Errorf("duplicate vm_id %q", vmID)
		}
		seenInFile[vmID] = true
		if _, ok := vms[vmID]; ok {
			return fmt.Errorf("duplicate vm_id %q across trace files", vmID)
		}

		sub, ok := subs[subID]
		if !ok {
			sub = sim.NewSubscription(subID, created, n)
			subs[subID] = sub
		}
		if forced != nil {
			forced[subID] = true
		}

		vm := sim.NewVM(vmID, sub, created, deleted, cores, memory, category, n)
		if len(record) > fieldCount {
			vm.TargetVMID = strings.TrimSpace(record[fieldCount])
		}
		vms[vmID] = vm
		*order = append(*order, vm)
	}
	return nil
}

// labelMalicious assigns each malicious set's flag to every subscription
// not already forced, drawing from a generator seeded directly from
// seed (the malicious-labelling stream), in ascending subscription-ID
// order for determinism.
func labelMalicious(subs map[string]*sim.Subscription, forced map[string]bool, proportions []float64, seed int64) {
	if len(proportions) == 0 {
		return
	}
	ids := make([]string, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rng := sim.NewMaliciousRNG(seed)
	for _, id := range ids {
		sub := subs[id]
		for m, p := range proportions {
			if forced[id] {
				sub.Malicious[m] = true
				continue
			}
			if rng.Float64() < p {
				sub.Malicious[m] = true
			}
		}
	}
}

// rewriteForcedSubscription rewrites every VM belonging to a forced
// (malicious_subscription_files) subscription onto one synthetic
// subscription ID, applied after the creation/deletion streams have
// already been built from the original per-VM subscription references.
func rewriteForcedSubscription(config sim.EngineConfig, subs map[string]*sim.Subscription, order []*sim.VM, forced map[string]bool) {
	if len(forced) == 0 {
		return
	}
	synthetic, ok := subs[config.ReplaceMaliciousSubscriptionID]
	if !ok {
		synthetic = sim.NewSubscription(config.ReplaceMaliciousSubscriptionID, 0, config.NumMaliciousSets())
		for m := range synthetic.Malicious {
			synthetic.Malicious[m] = true
		}
		subs[config.ReplaceMaliciousSubscriptionID] = synthetic
	}
	for _, vm := range order {
		if forced[vm.Sub.ID] {
			vm.Sub = synthetic
		}
	}
}
