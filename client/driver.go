package client

import (
	"errors"
	"fmt"

	hipblaslt "github.com/chiranjeevipattigidi/hipBLASLt"
)

// RunOptions tunes the benchmark driver loop.
type RunOptions struct {
	// Stream is the execution stream all work is submitted to. May be
	// nil when the backend accepts a nil default stream.
	Stream hipblaslt.Stream
	// RecordEnqueueEvents creates a start/stop marker pair around every
	// individual enqueue, for listeners that consume per-enqueue
	// timings. The BenchmarkTimer does not require them; it brackets
	// whole sync groups itself.
	RecordEnqueueEvents bool
	// OnSyncComplete, when non-nil, is called after each measured sync
	// group with the number of groups completed so far in the current
	// solution and the configured total.
	OnSyncComplete func(completed, total int)
}

// RunBenchmark drives the nested benchmark loop over every problem and
// solution: benchmark run ⊇ problem ⊇ solution ⊇ warmup ⊇ sync group ⊇
// enqueue batch. All listeners observe every phase in submission order.
// The first listener error aborts the session.
func RunBenchmark(dev hipblaslt.Device, problems []hipblaslt.Problem,
	solutions []Solution, listeners []RunListener, opts RunOptions) error {

	if len(listeners) == 0 {
		return errors.New("client: no run listeners")
	}

	for needMoreBenchmarkRuns(listeners) {
		for _, l := range listeners {
			l.PreBenchmarkRun()
		}

		for _, p := range problems {
			if err := runProblem(dev, p, solutions, listeners, opts); err != nil {
				return err
			}
		}

		for _, l := range listeners {
			l.PostBenchmarkRun()
		}
	}

	for _, l := range listeners {
		if err := l.FinalizeReport(); err != nil {
			return err
		}
	}
	for _, l := range listeners {
		if code := l.Error(); code != 0 {
			return fmt.Errorf("client: listener reported exit code %d", code)
		}
	}
	return nil
}

func runProblem(dev hipblaslt.Device, p hipblaslt.Problem, solutions []Solution,
	listeners []RunListener, opts RunOptions) error {

	for _, l := range listeners {
		if err := l.PreProblem(p); err != nil {
			return err
		}
	}

	for _, s := range solutions {
		if err := runSolution(dev, s, listeners, opts); err != nil {
			return err
		}
	}

	for _, l := range listeners {
		if err := l.PostProblem(); err != nil {
			return err
		}
	}
	return nil
}

func runSolution(dev hipblaslt.Device, s Solution, listeners []RunListener,
	opts RunOptions) error {

	for _, l := range listeners {
		if err := l.PreSolution(s); err != nil {
			return err
		}
	}

	if err := runWarmups(dev, s, listeners, opts); err != nil {
		return err
	}

	numSyncs := 0
	for _, l := range listeners {
		if n := l.NumSyncs(); n > numSyncs {
			numSyncs = n
		}
	}
	for _, l := range listeners {
		l.SetNumSyncs(numSyncs)
	}

	syncsDone := 0
	for needMoreRunsInSolution(listeners) {
		if err := runSyncGroup(dev, s, listeners, opts); err != nil {
			return err
		}
		syncsDone++
		if opts.OnSyncComplete != nil {
			opts.OnSyncComplete(syncsDone, numSyncs)
		}
	}

	for _, l := range listeners {
		if err := l.PostSolution(); err != nil {
			return err
		}
	}
	return nil
}

func runWarmups(dev hipblaslt.Device, s Solution, listeners []RunListener,
	opts RunOptions) error {

	numWarmups := 0
	for _, l := range listeners {
		if n := l.NumWarmupRuns(); n > numWarmups {
			numWarmups = n
		}
	}
	for _, l := range listeners {
		if err := l.SetNumWarmupRuns(numWarmups); err != nil {
			return err
		}
	}

	startEvents := make(TimingEvents, 0, numWarmups)
	stopEvents := make(TimingEvents, 0, numWarmups)
	defer func() { destroyEvents(startEvents, stopEvents) }()

	for i := 0; i < numWarmups; i++ {
		for _, l := range listeners {
			l.PreWarmup()
		}

		start, stop, err := recordedEnqueue(dev, s, opts)
		if err != nil {
			return err
		}
		startEvents = append(startEvents, start)
		stopEvents = append(stopEvents, stop)

		for _, l := range listeners {
			l.PostWarmup()
		}
	}

	for _, l := range listeners {
		if err := l.ValidateWarmups(startEvents, stopEvents); err != nil {
			return err
		}
	}
	return nil
}

func runSyncGroup(dev hipblaslt.Device, s Solution, listeners []RunListener,
	opts RunOptions) error {

	numEnqueues := 0
	for _, l := range listeners {
		n, err := l.NumEnqueuesPerSync()
		if err != nil {
			return err
		}
		if n > numEnqueues {
			numEnqueues = n
		}
	}
	for _, l := range listeners {
		l.SetNumEnqueuesPerSync(numEnqueues)
	}

	for _, l := range listeners {
		l.PreSyncs()
	}
	for _, l := range listeners {
		if err := l.PreEnqueues(opts.Stream); err != nil {
			return err
		}
	}

	startEvents := make(TimingEvents, 0, numEnqueues)
	stopEvents := make(TimingEvents, 0, numEnqueues)
	defer func() { destroyEvents(startEvents, stopEvents) }()

	for i := 0; i < numEnqueues; i++ {
		start, stop, err := recordedEnqueue(dev, s, opts)
		if err != nil {
			return err
		}
		startEvents = append(startEvents, start)
		stopEvents = append(stopEvents, stop)
	}

	for _, l := range listeners {
		if err := l.PostEnqueues(opts.Stream); err != nil {
			return err
		}
	}
	for _, l := range listeners {
		if err := l.ValidateEnqueues(startEvents, stopEvents); err != nil {
			return err
		}
	}
	for _, l := range listeners {
		l.PostSyncs()
	}
	return nil
}

// recordedEnqueue submits one enqueue, optionally bracketed by a
// recorded event pair owned by the caller.
func recordedEnqueue(dev hipblaslt.Device, s Solution, opts RunOptions) ([]hipblaslt.Event, []hipblaslt.Event, error) {
	if !opts.RecordEnqueueEvents {
		return nil, nil, s.Launch(opts.Stream)
	}

	start, err := dev.CreateEvent()
	if err != nil {
		return nil, nil, err
	}
	stop, err := dev.CreateEvent()
	if err != nil {
		_ = start.Destroy()
		return nil, nil, err
	}
	if err := start.Record(opts.Stream); err != nil {
		_ = start.Destroy()
		_ = stop.Destroy()
		return nil, nil, err
	}
	if err := s.Launch(opts.Stream); err != nil {
		_ = start.Destroy()
		_ = stop.Destroy()
		return nil, nil, err
	}
	if err := stop.Record(opts.Stream); err != nil {
		_ = start.Destroy()
		_ = stop.Destroy()
		return nil, nil, err
	}
	return []hipblaslt.Event{start}, []hipblaslt.Event{stop}, nil
}

func destroyEvents(groups ...TimingEvents) {
	for _, g := range groups {
		for _, batch := range g {
			for _, ev := range batch {
				_ = ev.Destroy()
			}
		}
	}
}

func needMoreBenchmarkRuns(listeners []RunListener) bool {
	for _, l := range listeners {
		if l.NeedMoreBenchmarkRuns() {
			return true
		}
	}
	return false
}

func needMoreRunsInSolution(listeners []RunListener) bool {
	for _, l := range listeners {
		if l.NeedMoreRunsInSolution() {
			return true
		}
	}
	return false
}
