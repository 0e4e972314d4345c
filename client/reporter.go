package client

import (
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metric keys, in the order they are emitted for each solution. The
// granularity and traffic keys are reported before any timed work; the
// speed keys after the solution's measurements are drained.
const (
	KeyTile0Granularity = "tile0-granularity"
	KeyTile1Granularity = "tile1-granularity"
	KeyCUGranularity    = "cu-granularity"
	KeyWaveGranularity  = "wave-granularity"
	KeyTotalGranularity = "total-granularity"
	KeyNumCUs           = "num-cus"
	KeyTilesPerCU       = "tiles-per-cu"
	KeyMemReadBytes     = "mem-read-bytes"
	KeyMemWriteBytes    = "mem-write-bytes"
	KeyTimeUS           = "time-us"
	KeySpeedGFlopsPerCU = "gflops-per-cu"
	KeySpeedGFlops      = "gflops"
)

// Reporter is the sink for computed metrics. Report may be called from
// the benchmarking thread only; implementations decide their own
// internal synchronization.
type Reporter interface {
	Report(key string, value float64) error
}

type metric struct {
	key   string
	value float64
}

// FanoutReporter forwards every metric to several sinks, each on its
// own goroutine. A failing sink keeps draining so the benchmarking
// thread never blocks; its first error surfaces at Close.
type FanoutReporter struct {
	chans []chan metric
	group *errgroup.Group
}

// NewFanoutReporter starts one forwarding goroutine per sink.
func NewFanoutReporter(sinks ...Reporter) *FanoutReporter {
	f := &FanoutReporter{
		chans: make([]chan metric, len(sinks)),
		group: new(errgroup.Group),
	}
	for i, sink := range sinks {
		sink := sink
		ch := make(chan metric, 64)
		f.chans[i] = ch
		f.group.Go(func() error {
			var first error
			for m := range ch {
				if first == nil {
					first = sink.Report(m.key, m.value)
				}
			}
			return first
		})
	}
	return f
}

// Report queues the metric for every sink. It never fails directly;
// sink errors are deferred to Close.
func (f *FanoutReporter) Report(key string, value float64) error {
	for _, ch := range f.chans {
		ch <- metric{key: key, value: value}
	}
	return nil
}

// Close drains all sinks and returns the first sink error, if any.
// Report must not be called after Close.
func (f *FanoutReporter) Close() error {
	for _, ch := range f.chans {
		close(ch)
	}
	return f.group.Wait()
}

// LogReporter emits each metric as a structured log record.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter wraps a logger as a metric sink. A nil logger uses
// slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(key string, value float64) error {
	r.logger.Info("metric", "key", key, "value", value)
	return nil
}

// Summary aggregates the samples recorded under one metric key.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
}

// StatsReporter retains every reported sample per key and summarizes
// them on demand. Safe for use behind a FanoutReporter.
type StatsReporter struct {
	mu      sync.Mutex
	samples map[string][]float64
}

func NewStatsReporter() *StatsReporter {
	return &StatsReporter{samples: make(map[string][]float64)}
}

func (r *StatsReporter) Report(key string, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples[key] = append(r.samples[key], value)
	return nil
}

// Samples returns a copy of the recorded samples for key, in report
// order.
func (r *StatsReporter) Samples(key string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.samples[key]...)
}

// Summarize computes distribution statistics over the samples recorded
// for key. The second return is false when no samples exist.
func (r *StatsReporter) Summarize(key string) (Summary, bool) {
	xs := r.Samples(key)
	if len(xs) == 0 {
		return Summary{}, false
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(xs, nil)
	s := Summary{
		Count:  len(xs),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
	return s, true
}

// Keys returns the metric keys seen so far, sorted.
func (r *StatsReporter) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.samples))
	for k := range r.samples {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
