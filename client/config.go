package client

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the benchmarking configuration surface. Zero values are
// filled from DefaultConfig by LoadConfig; hand-built configs should
// start from DefaultConfig too.
type Config struct {
	// NumWarmups is the minimum number of unmeasured enqueues run
	// before timing starts for each solution.
	NumWarmups int `yaml:"num-warmups"`
	// SyncAfterWarmups blocks on the last warmup's stop marker before
	// measurement begins.
	SyncAfterWarmups bool `yaml:"sync-after-warmups"`
	// NumBenchmarks is the number of full passes over the configured
	// problems and solutions.
	NumBenchmarks int `yaml:"num-benchmarks"`
	// NumEnqueuesPerSync is the base sync-group size.
	NumEnqueuesPerSync int `yaml:"num-enqueues-per-sync"`
	// MaxEnqueuesPerSync caps the sync-group size after the FLOP
	// threshold is applied.
	MaxEnqueuesPerSync int `yaml:"max-enqueues-per-sync"`
	// MinFlopsPerSync grows the sync group until it covers at least
	// this much work, amortizing sync overhead for short problems.
	// Zero disables the threshold.
	MinFlopsPerSync int64 `yaml:"min-flops-per-sync"`
	// NumSyncsPerBenchmark is the number of sync groups measured per
	// solution.
	NumSyncsPerBenchmark int `yaml:"num-syncs-per-benchmark"`
	// UseDeviceTimer selects device-event timing instead of host-clock
	// timing around each sync group.
	UseDeviceTimer bool `yaml:"use-device-timer"`
	// SleepPercent pauses after each measured sync group for this
	// percentage of its elapsed time, for thermal stabilization.
	SleepPercent int `yaml:"sleep-percent"`
	// FlushTimeUS is a fixed correction subtracted from the measured
	// per-enqueue time, accounting for asynchronous completion latency
	// not attributable to kernel work.
	FlushTimeUS float64 `yaml:"flush-time-us"`
}

// DefaultConfig returns the standard benchmarking configuration.
func DefaultConfig() Config {
	return Config{
		NumWarmups:           1,
		SyncAfterWarmups:     true,
		NumBenchmarks:        1,
		NumEnqueuesPerSync:   1,
		MaxEnqueuesPerSync:   100,
		MinFlopsPerSync:      0,
		NumSyncsPerBenchmark: 1,
		UseDeviceTimer:       false,
		SleepPercent:         0,
		FlushTimeUS:          0,
	}
}

// Validate rejects configurations the harness cannot run with.
func (c Config) Validate() error {
	if c.NumWarmups < 0 {
		return fmt.Errorf("client: num-warmups must be non-negative, got %d", c.NumWarmups)
	}
	if c.NumBenchmarks < 1 {
		return fmt.Errorf("client: num-benchmarks must be positive, got %d", c.NumBenchmarks)
	}
	if c.NumEnqueuesPerSync < 1 {
		return fmt.Errorf("client: num-enqueues-per-sync must be positive, got %d", c.NumEnqueuesPerSync)
	}
	if c.MaxEnqueuesPerSync < c.NumEnqueuesPerSync {
		return fmt.Errorf("client: max-enqueues-per-sync (%d) is below num-enqueues-per-sync (%d)",
			c.MaxEnqueuesPerSync, c.NumEnqueuesPerSync)
	}
	if c.MinFlopsPerSync < 0 {
		return fmt.Errorf("client: min-flops-per-sync must be non-negative, got %d", c.MinFlopsPerSync)
	}
	if c.NumSyncsPerBenchmark < 1 {
		return fmt.Errorf("client: num-syncs-per-benchmark must be positive, got %d", c.NumSyncsPerBenchmark)
	}
	if c.SleepPercent < 0 {
		return fmt.Errorf("client: sleep-percent must be non-negative, got %d", c.SleepPercent)
	}
	if c.FlushTimeUS < 0 {
		return fmt.Errorf("client: flush-time-us must be non-negative, got %g", c.FlushTimeUS)
	}
	return nil
}

// LoadConfig reads a YAML configuration file over DefaultConfig and
// validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("client: reading config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("client: parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
