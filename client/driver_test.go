package client

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hipblaslt "github.com/chiranjeevipattigidi/hipBLASLt"
	"github.com/chiranjeevipattigidi/hipBLASLt/backend/host"
	"github.com/chiranjeevipattigidi/hipBLASLt/perfmodel"
)

func TestRunBenchmarkEndToEnd(t *testing.T) {
	// warmups=2, enqueuesPerSync=5, syncsPerBenchmark=3, numBenchmarks=1
	// drives exactly 15 measured enqueues and 2 warmups per solution.
	cfg := DefaultConfig()
	cfg.NumWarmups = 2
	cfg.NumEnqueuesPerSync = 5
	cfg.NumSyncsPerBenchmark = 3
	cfg.NumBenchmarks = 1
	cfg.MinFlopsPerSync = 0

	dev := host.NewDevice()
	stats := NewStatsReporter()
	bt, err := NewBenchmarkTimer(cfg, hipblaslt.DefaultHardware(), dev, stats, nil)
	require.NoError(t, err)

	var launches atomic.Int64
	sol := Solution{
		Name:  "counting",
		Model: perfmodel.StaticModel{MacroTile0: 128, MacroTile1: 128},
		Launch: func(stream hipblaslt.Stream) error {
			launches.Add(1)
			return nil
		},
	}

	var syncsSeen int
	opts := RunOptions{
		Stream: dev.NewStream(),
		OnSyncComplete: func(completed, total int) {
			syncsSeen = completed
			assert.Equal(t, 3, total)
		},
	}

	err = RunBenchmark(dev, []hipblaslt.Problem{testGemm()}, []Solution{sol},
		[]RunListener{bt}, opts)
	require.NoError(t, err)

	assert.Equal(t, int64(2+15), launches.Load(), "2 warmups + 15 measured enqueues")
	assert.Equal(t, 3, syncsSeen)
	assert.False(t, bt.NeedMoreBenchmarkRuns())

	// Exactly one PreSolution/PostSolution pair: one sample per static
	// key and one per speed key.
	assert.Len(t, stats.Samples(KeyTile0Granularity), 1)
	assert.Len(t, stats.Samples(KeyTimeUS), 1)
	assert.Len(t, stats.Samples(KeySpeedGFlops), 1)
}

func TestRunBenchmarkMultipleProblemsAndRuns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBenchmarks = 2
	cfg.NumEnqueuesPerSync = 1
	cfg.NumSyncsPerBenchmark = 1
	cfg.NumWarmups = 0

	dev := host.NewDevice()
	stats := NewStatsReporter()
	bt, err := NewBenchmarkTimer(cfg, hipblaslt.DefaultHardware(), dev, stats, nil)
	require.NoError(t, err)

	problems := []hipblaslt.Problem{
		testGemm(),
		hipblaslt.GroupedGemmProblem{Gemms: []hipblaslt.GemmProblem{testGemm()}},
	}
	err = RunBenchmark(dev, problems, []Solution{testSolution()},
		[]RunListener{bt}, RunOptions{Stream: dev.NewStream()})
	require.NoError(t, err)

	// 2 benchmark runs x 2 problems x 1 solution.
	assert.Len(t, stats.Samples(KeyTimeUS), 4)
}

func TestRunBenchmarkDeviceTimerWithRecordedEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseDeviceTimer = true
	cfg.NumWarmups = 1
	cfg.SyncAfterWarmups = true
	cfg.NumEnqueuesPerSync = 2
	cfg.NumSyncsPerBenchmark = 2

	dev := host.NewDevice()
	stats := NewStatsReporter()
	bt, err := NewBenchmarkTimer(cfg, hipblaslt.DefaultHardware(), dev, stats, nil)
	require.NoError(t, err)

	opts := RunOptions{
		Stream:              dev.NewStream(),
		RecordEnqueueEvents: true,
	}
	err = RunBenchmark(dev, []hipblaslt.Problem{testGemm()}, []Solution{testSolution()},
		[]RunListener{bt}, opts)
	require.NoError(t, err)

	samples := stats.Samples(KeyTimeUS)
	require.Len(t, samples, 1)
}

func TestRunBenchmarkPropagatesListenerError(t *testing.T) {
	cfg := DefaultConfig()
	dev := host.NewDevice()
	bt, err := NewBenchmarkTimer(cfg, hipblaslt.DefaultHardware(), dev, &recordingReporter{}, nil)
	require.NoError(t, err)

	// An unclassifiable problem makes PreSolution fail fatally.
	err = RunBenchmark(dev, []hipblaslt.Problem{nil}, []Solution{testSolution()},
		[]RunListener{bt}, RunOptions{Stream: dev.NewStream()})
	assert.ErrorIs(t, err, hipblaslt.ErrUnsupportedProblem)
}

func TestRunBenchmarkRequiresListeners(t *testing.T) {
	err := RunBenchmark(host.NewDevice(), nil, nil, nil, RunOptions{})
	assert.Error(t, err)
}
