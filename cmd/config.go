package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coloc-sim/coloc-sim/sim"
)

// fileConfig is the on-disk YAML shape; it embeds sim.EngineConfig for
// the enumerated engine options and adds the run-level fields that are
// not part of the engine's own configuration (input/output paths, the
// run's reporting tags).
type fileConfig struct {
	sim.EngineConfig `yaml:",inline"`

	TraceFile        string `yaml:"trace_file"`
	OutputDir        string `yaml:"output_dir"`
	OutputPrefix     string `yaml:"output_prefix"`
	AlgorithmTag     string `yaml:"algorithm_tag"`
	MaliciousDataTag string `yaml:"malicious_data_tag"`
}

// loadConfig reads path as YAML over sim.DefaultEngineConfig, so fields
// absent from the file keep their documented defaults (§6).
func loadConfig(path string) (fileConfig, error) {
	cfg := fileConfig{EngineConfig: sim.DefaultEngineConfig()}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
