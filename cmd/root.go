// cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/coloc-sim/coloc-sim/report"
	"github.com/coloc-sim/coloc-sim/sim"
	"github.com/coloc-sim/coloc-sim/trace"
)

var (
	configPath string
	traceFlag  string
	outputFlag string
	seedFlag   int64
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "coloc-sim",
	Short: "Discrete-event simulator for co-residency leakage under VM placement policies",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and write its reports",
	RunE:  runSimulation,
}

// Execute runs the root command, translating errors into the process
// exit codes of §6: 1 for a malformed CLI invocation (cobra's own
// argument/flag parsing failures), -1 for semantic errors raised once
// the command body runs (bad config, malformed trace, capacity
// exhaustion).
func Execute() {
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(semanticError); ok {
			logrus.Error(err)
			os.Exit(-1)
		}
		logrus.Error(err)
		os.Exit(1)
	}
}

// semanticError marks an error raised by the simulation body itself
// (§7 taxonomy a-c) rather than by CLI/flag parsing, so Execute can
// distinguish exit code 1 from -1.
type semanticError struct{ err error }

func (e semanticError) Error() string { return e.err.Error() }
func (e semanticError) Unwrap() error { return e.err }

func fail(format string, args ...interface{}) error {
	return semanticError{fmt.Errorf(format, args...)}
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "path to the YAML engine configuration (required)")
	runCmd.Flags().StringVar(&traceFlag, "trace", "", "override the configured trace_file")
	runCmd.Flags().StringVar(&outputFlag, "output-dir", "", "override the configured output_dir")
	runCmd.Flags().Int64Var(&seedFlag, "seed", 0, "override the configured seed (0 means not set)")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")
	_ = runCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if traceFlag != "" {
		cfg.TraceFile = traceFlag
	}
	if outputFlag != "" {
		cfg.OutputDir = outputFlag
	}
	if seedFlag != 0 {
		cfg.Seed = &seedFlag
	}
	if cfg.TraceFile == "" {
		return fmt.Errorf("trace_file not set in config and --trace not given")
	}

	seed := int64(0)
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}
	cfg.Seed = &seed

	logrus.Infof("loading trace %s (policy=%s, seed=%d)", cfg.TraceFile, cfg.Policy, seed)
	loaded, err := trace.Load(cfg.EngineConfig, cfg.TraceFile, seed)
	if err != nil {
		return fail("trace load failed: %v", err)
	}

	eng, err := sim.NewEngine(cfg.EngineConfig, loaded.Subs)
	if err != nil {
		return fail("engine construction failed: %v", err)
	}

	if err := eng.Run(loaded.Creations, loaded.Deletions); err != nil {
		return fail("simulation failed: %v", err)
	}
	logrus.Infof("run complete: %d creations, %d deletions, %d hosts booted",
		eng.CreationsTotal, eng.DeletionsTotal, eng.HostBoots())

	metrics := sim.ComputeMetrics(eng)
	if err := writeReports(cfg, eng, metrics); err != nil {
		return fail("writing reports failed: %v", err)
	}
	return nil
}

func writeReports(cfg fileConfig, eng *sim.Engine, metrics sim.RunMetrics) error {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}
	prefix := cfg.OutputPrefix
	if prefix == "" {
		prefix = "run"
	}
	path := func(name string) string { return filepath.Join(cfg.OutputDir, prefix+"_"+name) }

	seed := int64(0)
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	summary := report.SummaryRow{
		AlgorithmTag:     cfg.AlgorithmTag,
		Seed:             seed,
		MaliciousDataTag: cfg.MaliciousDataTag,
		CoreUtilization:  metrics.CoreUtilization,
		AvgHosts:         eng.AvgActiveHosts(),
		MaxHosts:         eng.MaxActiveHosts,
		HostBoots:        eng.HostBoots(),
		HostShutdowns:    eng.HostShutdowns(),
		VMCreations:      eng.CreationsTotal,
		AvgVMs:           eng.AvgActiveVMs(),
		MaxVMs:           eng.MaxActiveVMs,
		SubsSeen:         len(eng.Subs),
		Sets:             metrics.Sets,
	}
	if err := report.WriteSummary(path("summary.csv"), summary); err != nil {
		return err
	}

	timestamps := make([]int64, len(eng.Intervals))
	utilValues := make([]sim.Decimal, len(eng.Intervals))
	hostValues := make([]sim.Decimal, len(eng.Intervals))
	vmValues := make([]sim.Decimal, len(eng.Intervals))
	bootValues := make([]sim.Decimal, len(eng.Intervals))
	shutdownValues := make([]sim.Decimal, len(eng.Intervals))
	for i, iv := range eng.Intervals {
		timestamps[i] = iv.Time
		utilValues[i] = iv.CoreUtilization
		hostValues[i] = sim.DecimalFromInt(int64(iv.ActiveHosts))
		vmValues[i] = sim.DecimalFromInt(int64(iv.ActiveVMs))
		bootValues[i] = sim.DecimalFromInt(int64(iv.Boots))
		shutdownValues[i] = sim.DecimalFromInt(int64(iv.Shutdowns))
	}
	if err := report.WriteTimeSeries(path("utilization.csv"), seed, cfg.MaliciousDataTag, timestamps, utilValues); err != nil {
		return err
	}
	if err := report.WriteTimeSeries(path("active_hosts.csv"), seed, cfg.MaliciousDataTag, timestamps, hostValues); err != nil {
		return err
	}
	if err := report.WriteTimeSeries(path("active_vms.csv"), seed, cfg.MaliciousDataTag, timestamps, vmValues); err != nil {
		return err
	}
	if err := report.WriteTimeSeries(path("host_boots.csv"), seed, cfg.MaliciousDataTag, timestamps, bootValues); err != nil {
		return err
	}
	if err := report.WriteTimeSeries(path("host_shutdowns.csv"), seed, cfg.MaliciousDataTag, timestamps, shutdownValues); err != nil {
		return err
	}

	if err := report.WriteTargets(path("target.csv"), eng); err != nil {
		return err
	}
	if err := report.WriteHits(path("hits.csv"), eng); err != nil {
		return err
	}
	if err := report.WriteMalEvents(path("malevents.csv"), eng, cfg.NumMaliciousSets()); err != nil {
		return err
	}
	return nil
}
