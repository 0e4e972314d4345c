// Command hipbench runs the benchmark measurement core against the
// host-clock backend with synthetic GEMM workloads. It exists to
// exercise the full harness end to end; real kernel dispatch comes from
// an external backend.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	hipblaslt "github.com/chiranjeevipattigidi/hipBLASLt"
	"github.com/chiranjeevipattigidi/hipBLASLt/backend/host"
	"github.com/chiranjeevipattigidi/hipBLASLt/client"
	"github.com/chiranjeevipattigidi/hipBLASLt/perfmodel"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hipbench",
		Short:         "GPU kernel benchmark measurement core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		configPath string
		gemmSpecs  []string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark loop on the host backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := client.DefaultConfig()
			if configPath != "" {
				loaded, err := client.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			problems, err := parseGemmSpecs(gemmSpecs)
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			return runBench(cfg, problems, logger, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML benchmark configuration file")
	cmd.Flags().StringArrayVar(&gemmSpecs, "gemm", []string{"1024x1024x1024"},
		"GEMM problem shape MxNxK[xBatch]; repeatable")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func runBench(cfg client.Config, problems []hipblaslt.Problem,
	logger *slog.Logger, out io.Writer) error {

	dev := host.NewDevice()
	hw := hipblaslt.DefaultHardware()

	stats := client.NewStatsReporter()
	fanout := client.NewFanoutReporter(stats, client.NewLogReporter(logger))

	timer, err := client.NewBenchmarkTimer(cfg, hw, dev, fanout, logger)
	if err != nil {
		return err
	}

	solutions := []client.Solution{
		{
			Name:   "host-reference",
			Model:  perfmodel.StaticModel{MacroTile0: 128, MacroTile1: 128},
			Launch: hostLaunch(problems),
		},
	}

	totalSyncs := cfg.NumSyncsPerBenchmark * len(problems) * len(solutions) * cfg.NumBenchmarks
	bar := progressbar.NewOptions(totalSyncs,
		progressbar.OptionSetDescription("benchmarking"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	opts := client.RunOptions{
		Stream: dev.NewStream(),
		OnSyncComplete: func(completed, total int) {
			_ = bar.Add(1)
		},
	}

	if err := client.RunBenchmark(dev, problems, solutions,
		[]client.RunListener{timer}, opts); err != nil {
		_ = fanout.Close()
		return err
	}
	if err := fanout.Close(); err != nil {
		return err
	}
	_ = bar.Finish()

	printSummary(out, stats)
	return nil
}

// hostLaunch returns a launch callback that burns host cycles roughly
// proportional to the first problem's FLOP count, so measured times are
// non-zero and shape-dependent.
func hostLaunch(problems []hipblaslt.Problem) func(hipblaslt.Stream) error {
	var flops float64 = 1e6
	if len(problems) > 0 {
		if f, err := hipblaslt.ProblemFlops(problems[0]); err == nil {
			flops = f
		}
	}
	iters := int(flops / 100)
	if iters > 10_000_000 {
		iters = 10_000_000
	}
	if iters < 1 {
		iters = 1
	}
	return func(stream hipblaslt.Stream) error {
		acc := 1.0
		for i := 0; i < iters; i++ {
			acc = acc*1.0000001 + 0.0000001
		}
		if acc == 0 {
			return fmt.Errorf("unreachable")
		}
		return nil
	}
}

func printSummary(out io.Writer, stats *client.StatsReporter) {
	fmt.Fprintf(out, "%-20s %8s %12s %12s %12s %12s\n",
		"metric", "count", "mean", "median", "min", "max")
	for _, key := range stats.Keys() {
		s, ok := stats.Summarize(key)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "%-20s %8d %12.4g %12.4g %12.4g %12.4g\n",
			key, s.Count, s.Mean, s.Median, s.Min, s.Max)
	}
}

// parseGemmSpecs converts MxNxK[xBatch] strings into problems.
func parseGemmSpecs(specs []string) ([]hipblaslt.Problem, error) {
	problems := make([]hipblaslt.Problem, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(strings.ToLower(spec), "x")
		if len(parts) != 3 && len(parts) != 4 {
			return nil, fmt.Errorf("invalid --gemm %q: want MxNxK or MxNxKxBatch", spec)
		}
		dims := make([]int, len(parts))
		for i, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil || v < 1 {
				return nil, fmt.Errorf("invalid --gemm %q: bad dimension %q", spec, p)
			}
			dims[i] = v
		}
		batch := 1
		if len(dims) == 4 {
			batch = dims[3]
		}
		problems = append(problems, hipblaslt.GemmProblem{
			Name:   spec,
			M:      dims[0],
			N:      dims[1],
			K:      dims[2],
			Batch:  batch,
			ABytes: 2, BBytes: 2, CBytes: 2, DBytes: 2,
		})
	}
	return problems, nil
}
