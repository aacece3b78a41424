// Package report writes the simulator's CSV output files: a per-run
// summary row, per-metric time-series files, and the attack-simulation
// target/hits/malevents records.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/coloc-sim/coloc-sim/sim"
)

// SummaryRow is one row of the shared-prefix summary file (§6): one per
// run, with a header written on the file's first creation.
type SummaryRow struct {
	AlgorithmTag     string
	Seed             int64
	MaliciousDataTag string

	CoreUtilization sim.Decimal
	AvgHosts        sim.Decimal
	MaxHosts        int
	HostBoots       int
	HostShutdowns   int
	VMCreations     int
	AvgVMs          sim.Decimal
	MaxVMs          int
	SubsSeen        int

	Sets []sim.SetMetrics
}

// WriteSummary appends row to path, writing the header first if the
// file does not yet exist or is empty. The header's per-set column
// groups are sized to len(row.Sets).
func WriteSummary(path string, row SummaryRow) error {
	needsHeader, err := fileEmpty(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if needsHeader {
		if err := w.Write(summaryHeader(len(row.Sets))); err != nil {
			return err
		}
	}
	return w.Write(summaryRecord(row))
}

func summaryHeader(numSets int) []string {
	header := []string{
		"algorithm", "seed", "maldata",
		"core_utilization", "avg_hosts", "max_hosts",
		"host_boots", "host_shutdowns", "vm_creations",
		"avg_vms", "max_vms", "subs_seen",
	}
	for m := 0; m < numSets; m++ {
		prefix := fmt.Sprintf("m%d_", m)
		header = append(header,
			prefix+"user_clr", prefix+"vm_clr", prefix+"unsafe_sub_vm_clr",
			prefix+"safe_vm_time", prefix+"unsafe_sub_safe_vm_time",
			prefix+"safe_sub_time", prefix+"coverage",
		)
	}
	return header
}

func summaryRecord(row SummaryRow) []string {
	out := []string{
		row.AlgorithmTag,
		strconv.FormatInt(row.Seed, 10),
		row.MaliciousDataTag,
		row.CoreUtilization.String(),
		row.AvgHosts.String(),
		strconv.Itoa(row.MaxHosts),
		strconv.Itoa(row.HostBoots),
		strconv.Itoa(row.HostShutdowns),
		strconv.Itoa(row.VMCreations),
		row.AvgVMs.String(),
		strconv.Itoa(row.MaxVMs),
		strconv.Itoa(row.SubsSeen),
	}
	for _, s := range row.Sets {
		out = append(out,
			s.UserCLR.String(), s.VMCLR.String(), s.UnsafeSubVMCLR.String(),
			s.SafeVMTimeProportion.String(), s.UnsafeSubSafeVMTime.String(),
			s.SafeSubTimeProportion.String(), s.Coverage.String(),
		)
	}
	return out
}

// WriteTimeSeries appends one semicolon-delimited row for a single
// metric's time series to path: `seed;maldata;v_1;...;v_k` under a
// header of `seed;maldata;t_1;...;t_k` written on first creation.
func WriteTimeSeries(path string, seed int64, maldata string, timestamps []int64, values []sim.Decimal) error {
	needsHeader, err := fileEmpty(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	defer w.Flush()

	if needsHeader {
		header := []string{"seed", "maldata"}
		for _, t := range timestamps {
			header = append(header, fmt.Sprintf("t_%d", t))
		}
		if err := w.Write(header); err != nil {
			return err
		}
	}

	record := []string{strconv.FormatInt(seed, 10), maldata}
	for _, v := range values {
		record = append(record, v.String())
	}
	return w.Write(record)
}

// WriteTargets writes one row per VM carrying a target_vm_id annotation:
// vm_id, sub_id, target_vm_id, target_sub_id (empty if unresolved), hit.
func WriteTargets(path string, eng *sim.Engine) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"vm_id", "sub_id", "target_vm_id", "target_sub_id", "hit"}); err != nil {
		return err
	}
	for _, vm := range sortedVMs(eng) {
		if vm.TargetVMID == "" {
			continue
		}
		targetSubID := ""
		if vm.TargetVM != nil {
			targetSubID = vm.TargetVM.Sub.ID
		}
		if err := w.Write([]string{
			vm.ID, vm.Sub.ID, vm.TargetVMID, targetSubID, strconv.FormatBool(vm.HitTarget),
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteHits writes one row per VM that actually landed on its declared
// target's host: vm_id, sub_id, target_vm_id, target_sub_id, time.
func WriteHits(path string, eng *sim.Engine) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"vm_id", "sub_id", "target_vm_id", "target_sub_id", "time"}); err != nil {
		return err
	}
	for _, vm := range sortedVMs(eng) {
		if !vm.HitTarget {
			continue
		}
		if err := w.Write([]string{
			vm.ID, vm.Sub.ID, vm.TargetVMID, vm.TargetVM.Sub.ID, strconv.FormatInt(vm.Created, 10),
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteMalEvents writes one row per closed malicious period observed on
// any host, across every malicious set: host_number, set, start, end.
func WriteMalEvents(path string, eng *sim.Engine, numSets int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"host_number", "set", "start", "end"}); err != nil {
		return err
	}
	for _, h := range eng.Hosts {
		for m := 0; m < numSets; m++ {
			for _, iv := range h.MaliciousPeriods(m) {
				if err := w.Write([]string{
					strconv.Itoa(h.Number), strconv.Itoa(m),
					strconv.FormatInt(iv.Start, 10), strconv.FormatInt(iv.End, 10),
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// sortedVMs returns eng.VMs in a stable, deterministic order (by ID), so
// that writers iterating the engine's VM map produce byte-identical
// output across runs of the same seed (map iteration order is not).
func sortedVMs(eng *sim.Engine) []*sim.VM {
	out := make([]*sim.VM, 0, len(eng.VMs))
	for _, vm := range eng.VMs {
		out = append(out, vm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func fileEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return info.Size() == 0, nil
}
