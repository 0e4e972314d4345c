// Package client implements the benchmark measurement harness: the
// nested phase state machine that times kernel enqueues, the listener
// contract the driver loop invokes, and the reporting sinks measured
// metrics flow into.
package client

import (
	hipblaslt "github.com/chiranjeevipattigidi/hipBLASLt"
	"github.com/chiranjeevipattigidi/hipBLASLt/perfmodel"
)

// TimingEvents is an ordered collection of device-side timing markers,
// one inner list per enqueue batch within a sync group. Entries may be
// nil when the driver runs without per-enqueue events; the outer length
// still carries the batch count.
type TimingEvents [][]hipblaslt.Event

// Solution is a candidate kernel configuration: a launch callback that
// submits one enqueue to a stream, and the performance model used to
// project its static efficiency.
type Solution struct {
	Name   string
	Model  perfmodel.Model
	Launch func(stream hipblaslt.Stream) error
}

// RunListener is the phase contract between the benchmark driver loop
// and its observers. Phases nest strictly:
//
//	benchmark run ⊇ problem ⊇ solution ⊇ warmup/sync group ⊇ enqueue batch
//
// The driver calls the need-more predicate at each level, brackets the
// level with the pre/post pair, and hands timing markers to the
// validate hooks. Listeners are not safe for concurrent invocation; the
// driver is single-threaded per session.
type RunListener interface {
	NeedMoreBenchmarkRuns() bool
	PreBenchmarkRun()
	PostBenchmarkRun()

	PreProblem(p hipblaslt.Problem) error
	PostProblem() error

	PreSolution(s Solution) error
	PostSolution() error
	NeedMoreRunsInSolution() bool

	NumWarmupRuns() int
	SetNumWarmupRuns(count int) error
	PreWarmup()
	PostWarmup()
	ValidateWarmups(startEvents, stopEvents TimingEvents) error

	NumSyncs() int
	SetNumSyncs(count int)
	PreSyncs()
	PostSyncs()

	NumEnqueuesPerSync() (int, error)
	SetNumEnqueuesPerSync(count int)
	PreEnqueues(stream hipblaslt.Stream) error
	PostEnqueues(stream hipblaslt.Stream) error
	ValidateEnqueues(startEvents, stopEvents TimingEvents) error

	FinalizeReport() error

	// Error reports the listener's exit status contribution; zero means
	// success.
	Error() int
}
