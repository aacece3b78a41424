package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/coloc-sim/coloc-sim/workload"
)

var (
	synthOut            string
	synthNumSubs        int
	synthNumVMs         int
	synthHorizon        int64
	synthMinCores       int64
	synthMaxCores       int64
	synthMinMemory      float64
	synthMaxMemory      float64
	synthTargetFraction float64
	synthCategory       string
	synthSeed           int64
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Synthesize an attacker-trace CSV file in the simulator's input format",
	RunE:  runSynth,
}

func init() {
	synthCmd.Flags().StringVar(&synthOut, "out", "trace.csv", "output CSV path")
	synthCmd.Flags().IntVar(&synthNumSubs, "num-subscriptions", 10, "number of distinct subscriptions")
	synthCmd.Flags().IntVar(&synthNumVMs, "num-vms", 1000, "number of VMs to synthesize")
	synthCmd.Flags().Int64Var(&synthHorizon, "horizon", 86400, "time window in seconds")
	synthCmd.Flags().Int64Var(&synthMinCores, "min-cores", 1, "minimum VM core demand")
	synthCmd.Flags().Int64Var(&synthMaxCores, "max-cores", 4, "maximum VM core demand")
	synthCmd.Flags().Float64Var(&synthMinMemory, "min-memory", 1, "minimum VM memory demand")
	synthCmd.Flags().Float64Var(&synthMaxMemory, "max-memory", 8, "maximum VM memory demand")
	synthCmd.Flags().Float64Var(&synthTargetFraction, "target-fraction", 0, "fraction of VMs annotated with a target_vm_id")
	synthCmd.Flags().StringVar(&synthCategory, "category", "synthetic", "category label to stamp on every row")
	synthCmd.Flags().Int64Var(&synthSeed, "seed", 1, "generator seed")

	rootCmd.AddCommand(synthCmd)
}

func runSynth(cmd *cobra.Command, args []string) error {
	rows, err := workload.Generate(workload.GenerateParams{
		NumSubscriptions: synthNumSubs,
		NumVMs:           synthNumVMs,
		Horizon:          synthHorizon,
		MinCores:         synthMinCores,
		MaxCores:         synthMaxCores,
		MinMemory:        synthMinMemory,
		MaxMemory:        synthMaxMemory,
		TargetFraction:   synthTargetFraction,
		Category:         synthCategory,
		Seed:             synthSeed,
	})
	if err != nil {
		return fail("synth: %v", err)
	}
	if err := workload.WriteCSV(synthOut, rows); err != nil {
		return fail("synth: writing %s: %v", synthOut, err)
	}
	logrus.Info(fmt.Sprintf("wrote %d VM rows to %s", len(rows), synthOut))
	return nil
}
