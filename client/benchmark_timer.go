package client

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	hipblaslt "github.com/chiranjeevipattigidi/hipBLASLt"
)

// ErrInsufficientWarmups is returned when a caller proposes fewer
// warmup runs than the configuration requires.
var ErrInsufficientWarmups = errors.New("client: warmup count below configured minimum")

// ErrNoEnqueues is returned by PostSolution when no enqueues were
// measured for the solution, which would make the per-enqueue rate
// undefined.
var ErrNoEnqueues = errors.New("client: post-solution with zero measured enqueues")

// session is the per-solution mutable state, reset as a unit at
// PreSolution. Keeping it in one place makes the ordering dependency
// between the bracketed phase calls explicit.
type session struct {
	solution       Solution
	timeInSolution time.Duration
	numEnqueues    int

	// Host-clock timing window.
	startTime time.Time
	endTime   time.Time

	// Internally owned device event pair; open between PreEnqueues and
	// ValidateEnqueues in device-timer mode, destroyed exactly once
	// after its elapsed time is read.
	ownedStart hipblaslt.Event
	ownedStop  hipblaslt.Event
}

// BenchmarkTimer measures kernel execution time across the nested
// benchmark phases and converts accumulated device time into reported
// throughput metrics. It implements RunListener.
//
// The timing strategy is fixed per instance: host-clock timing brackets
// each sync group with full device synchronization; device-event timing
// records a marker pair on the stream without blocking the host.
type BenchmarkTimer struct {
	cfg      Config
	hardware hipblaslt.Hardware
	dev      hipblaslt.Device
	reporter Reporter
	logger   *slog.Logger

	numEnqueuesPerSolution int

	numBenchmarksRun    int
	numSyncsInBenchmark int
	curEnqueuesPerSync  int

	problem hipblaslt.Problem
	sess    session

	totalDeviceTime time.Duration
}

var _ RunListener = (*BenchmarkTimer)(nil)

// NewBenchmarkTimer builds a timer for one benchmarking session. The
// reporter must be non-nil; logger may be nil to disable logging.
func NewBenchmarkTimer(cfg Config, hw hipblaslt.Hardware, dev hipblaslt.Device,
	reporter Reporter, logger *slog.Logger) (*BenchmarkTimer, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, errors.New("client: nil device")
	}
	if reporter == nil {
		return nil, errors.New("client: nil reporter")
	}
	return &BenchmarkTimer{
		cfg:                    cfg,
		hardware:               hw,
		dev:                    dev,
		reporter:               reporter,
		logger:                 logger,
		numEnqueuesPerSolution: cfg.NumEnqueuesPerSync * cfg.NumSyncsPerBenchmark,
	}, nil
}

// TotalDeviceTime reports the lifetime sum of all measured intervals.
func (bt *BenchmarkTimer) TotalDeviceTime() time.Duration {
	return bt.totalDeviceTime
}

func (bt *BenchmarkTimer) NeedMoreBenchmarkRuns() bool {
	return bt.numBenchmarksRun < bt.cfg.NumBenchmarks
}

func (bt *BenchmarkTimer) PreBenchmarkRun() {}

func (bt *BenchmarkTimer) PostBenchmarkRun() {
	bt.numBenchmarksRun++
}

func (bt *BenchmarkTimer) PreProblem(p hipblaslt.Problem) error {
	bt.problem = p
	return nil
}

func (bt *BenchmarkTimer) PostProblem() error {
	bt.problem = nil
	return nil
}

// PreSolution resets the per-solution accumulator, resolves the static
// performance projection for the bound problem, and reports it before
// any timed work, so the static metrics are independent of measured
// throughput.
func (bt *BenchmarkTimer) PreSolution(s Solution) error {
	bt.sess = session{solution: s}

	gemm, err := hipblaslt.PrimaryGemm(bt.problem)
	if err != nil {
		return err
	}
	pp := s.Model.Project(gemm, bt.hardware)

	if bt.logger != nil {
		bt.logger.Debug("pre-solution",
			"solution", s.Name,
			"total_granularity", pp.TotalGranularity,
			"tiles_per_cu", pp.TilesPerCU)
	}

	for _, kv := range []struct {
		key   string
		value float64
	}{
		{KeyTile0Granularity, pp.Tile0Granularity},
		{KeyTile1Granularity, pp.Tile1Granularity},
		{KeyCUGranularity, pp.CUGranularity},
		{KeyWaveGranularity, pp.WaveGranularity},
		{KeyTotalGranularity, pp.TotalGranularity},
		{KeyNumCUs, float64(bt.hardware.ComputeUnits)},
		{KeyTilesPerCU, pp.TilesPerCU},
		{KeyMemReadBytes, pp.MemReadBytes},
		{KeyMemWriteBytes, pp.MemWriteBytes},
	} {
		if err := bt.reporter.Report(kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}

// PostSolution drains the accumulated time into a per-enqueue rate,
// subtracts the flush-time correction, and reports elapsed time and
// throughput. The accumulator and counter are zeroed afterwards.
func (bt *BenchmarkTimer) PostSolution() error {
	if bt.sess.numEnqueues == 0 {
		return ErrNoEnqueues
	}

	timePerEnqueueUS := bt.sess.timeInSolution.Seconds()*1e6/float64(bt.sess.numEnqueues) -
		bt.cfg.FlushTimeUS

	gemm, err := hipblaslt.PrimaryGemm(bt.problem)
	if err != nil {
		return err
	}
	pp := bt.sess.solution.Model.Project(gemm, bt.hardware)
	flopCount := gemm.FlopCount()

	gflops := flopCount / timePerEnqueueUS / 1000.0
	tiles := int(pp.TilesPerCU * float64(bt.hardware.ComputeUnits))
	usedCUs := tiles
	if bt.hardware.ComputeUnits < usedCUs {
		usedCUs = bt.hardware.ComputeUnits
	}
	gflopsPerCU := gflops / float64(usedCUs)

	if bt.logger != nil {
		bt.logger.Debug("post-solution",
			"solution", bt.sess.solution.Name,
			"enqueues", bt.sess.numEnqueues,
			"time_us", timePerEnqueueUS,
			"gflops", gflops)
	}

	for _, kv := range []struct {
		key   string
		value float64
	}{
		{KeyTimeUS, timePerEnqueueUS},
		{KeySpeedGFlopsPerCU, gflopsPerCU},
		{KeySpeedGFlops, gflops},
	} {
		if err := bt.reporter.Report(kv.key, kv.value); err != nil {
			return err
		}
	}

	bt.sess.timeInSolution = 0
	bt.sess.numEnqueues = 0
	return nil
}

func (bt *BenchmarkTimer) NeedMoreRunsInSolution() bool {
	return bt.sess.numEnqueues < bt.numEnqueuesPerSolution
}

func (bt *BenchmarkTimer) NumWarmupRuns() int {
	return bt.cfg.NumWarmups
}

// SetNumWarmupRuns rejects any count below the configured minimum so a
// solution is never under-warmed.
func (bt *BenchmarkTimer) SetNumWarmupRuns(count int) error {
	if count < bt.cfg.NumWarmups {
		return fmt.Errorf("%w: expected at least %d, got %d",
			ErrInsufficientWarmups, bt.cfg.NumWarmups, count)
	}
	return nil
}

func (bt *BenchmarkTimer) PreWarmup()  {}
func (bt *BenchmarkTimer) PostWarmup() {}

// ValidateWarmups blocks on the last recorded stop marker when the
// configuration asks for a post-warmup synchronization. Warmup time is
// never accumulated.
func (bt *BenchmarkTimer) ValidateWarmups(startEvents, stopEvents TimingEvents) error {
	if !bt.cfg.SyncAfterWarmups {
		return nil
	}
	if len(stopEvents) == 0 {
		return nil
	}
	last := stopEvents[len(stopEvents)-1]
	if len(last) == 0 {
		return nil
	}
	return last[len(last)-1].Synchronize()
}

func (bt *BenchmarkTimer) NumSyncs() int {
	return bt.cfg.NumSyncsPerBenchmark
}

func (bt *BenchmarkTimer) SetNumSyncs(count int) {
	bt.numSyncsInBenchmark = count
}

func (bt *BenchmarkTimer) PreSyncs()  {}
func (bt *BenchmarkTimer) PostSyncs() {}

// NumEnqueuesPerSync derives the sync-group size. Short-running
// problems batch enough enqueues to cover the configured minimum FLOP
// threshold; the result never falls below the configured base count
// and never exceeds the configured maximum.
func (bt *BenchmarkTimer) NumEnqueuesPerSync() (int, error) {
	enqueuesByFlops := 0
	if bt.cfg.MinFlopsPerSync > 0 {
		flops, err := hipblaslt.ProblemFlops(bt.problem)
		if err != nil {
			return 0, err
		}
		if flops > 0 {
			enqueuesByFlops = int(math.Ceil(float64(bt.cfg.MinFlopsPerSync) / flops))
		}
	}

	n := bt.cfg.NumEnqueuesPerSync
	if enqueuesByFlops > n {
		n = enqueuesByFlops
	}
	if n > bt.cfg.MaxEnqueuesPerSync {
		n = bt.cfg.MaxEnqueuesPerSync
	}
	return n, nil
}

func (bt *BenchmarkTimer) SetNumEnqueuesPerSync(count int) {
	bt.curEnqueuesPerSync = count
}

// PreEnqueues opens the timing window. Host-clock mode drains the
// device and takes a monotonic timestamp; device-timer mode creates an
// owned event pair and records the start marker without blocking.
func (bt *BenchmarkTimer) PreEnqueues(stream hipblaslt.Stream) error {
	if !bt.cfg.UseDeviceTimer {
		if err := bt.dev.Synchronize(); err != nil {
			return err
		}
		bt.sess.startTime = time.Now()
		return nil
	}

	start, err := bt.dev.CreateEvent()
	if err != nil {
		return err
	}
	stop, err := bt.dev.CreateEvent()
	if err != nil {
		_ = start.Destroy()
		return err
	}
	bt.sess.ownedStart = start
	bt.sess.ownedStop = stop
	return start.Record(stream)
}

// PostEnqueues closes the timing window symmetrically to PreEnqueues.
func (bt *BenchmarkTimer) PostEnqueues(stream hipblaslt.Stream) error {
	if !bt.cfg.UseDeviceTimer {
		if err := bt.dev.Synchronize(); err != nil {
			return err
		}
		bt.sess.endTime = time.Now()
		return nil
	}

	if bt.sess.ownedStop == nil {
		// Externally supplied events close their own window.
		return nil
	}
	if err := bt.sess.ownedStop.Record(stream); err != nil {
		return err
	}
	return bt.sess.ownedStop.Synchronize()
}

// ValidateEnqueues computes the elapsed time of the batch just closed
// and adds it to the per-solution accumulator and the lifetime total.
// The enqueue counter advances by the number of enqueue batches just
// measured. An optional post-measurement sleep throttles issue rate
// after accounting, so it never pollutes the measured interval.
func (bt *BenchmarkTimer) ValidateEnqueues(startEvents, stopEvents TimingEvents) error {
	var total time.Duration

	switch {
	case !bt.cfg.UseDeviceTimer:
		total = bt.sess.endTime.Sub(bt.sess.startTime)

	case bt.sess.ownedStart == nil && bt.sess.ownedStop == nil:
		// Externally supplied per-enqueue event lists: pair each
		// batch's first start marker with its last stop marker.
		if len(stopEvents) > 0 {
			last := stopEvents[len(stopEvents)-1]
			if len(last) > 0 {
				if err := last[len(last)-1].Synchronize(); err != nil {
					return err
				}
			}
		}
		for i := range startEvents {
			if i >= len(stopEvents) {
				break
			}
			starts := startEvents[i]
			stops := stopEvents[i]
			if len(starts) == 0 || len(stops) == 0 {
				continue
			}
			d, err := bt.dev.Elapsed(starts[0], stops[len(stops)-1])
			if err != nil {
				return err
			}
			total += d
		}

	default:
		d, err := bt.dev.Elapsed(bt.sess.ownedStart, bt.sess.ownedStop)
		if err != nil {
			return err
		}
		total = d
		if err := bt.sess.ownedStart.Destroy(); err != nil {
			return err
		}
		if err := bt.sess.ownedStop.Destroy(); err != nil {
			return err
		}
		bt.sess.ownedStart = nil
		bt.sess.ownedStop = nil
	}

	bt.sess.timeInSolution += total
	bt.totalDeviceTime += total
	bt.sess.numEnqueues += len(startEvents)

	if bt.cfg.SleepPercent > 0 {
		time.Sleep(total * time.Duration(bt.cfg.SleepPercent) / 100)
	}
	return nil
}

func (bt *BenchmarkTimer) FinalizeReport() error {
	return nil
}

// Error always reports success; the timer never independently fails a
// run. Errors surface through the phase methods instead.
func (bt *BenchmarkTimer) Error() int {
	return 0
}
