// Package perfmodel computes static performance projections for GEMM
// workloads: how well a problem's shape fills the hardware (tile,
// compute-unit, and wave granularities) and how much memory traffic one
// enqueue generates. The benchmarking harness reports these alongside
// measured throughput so results can be normalized offline.
package perfmodel

import (
	"math"

	hipblaslt "github.com/chiranjeevipattigidi/hipBLASLt"
)

// Projection is a static performance estimate for one problem/solution
// pairing on given hardware. Granularities are fractional efficiencies
// in (0, 1]; traffic estimates are in bytes per enqueue.
type Projection struct {
	Tile0Granularity float64
	Tile1Granularity float64
	CUGranularity    float64
	WaveGranularity  float64
	TotalGranularity float64
	TilesPerCU       float64
	MemReadBytes     float64
	MemWriteBytes    float64
}

// Model projects the static performance of a GEMM workload.
type Model interface {
	Project(p hipblaslt.GemmProblem, hw hipblaslt.Hardware) Projection
}

// StaticModel is the default tile-occupancy model, parameterized by a
// solution's macro-tile configuration.
type StaticModel struct {
	MacroTile0 int
	MacroTile1 int
	// GlobalSplitU multiplies the tile count when the K dimension is
	// split across workgroups. Zero means no split.
	GlobalSplitU int
	// ThreadsPerWorkGroup sizes the wave estimate. Zero defaults to 256.
	ThreadsPerWorkGroup int
}

var _ Model = StaticModel{}

// Project computes tile counts by ceiling division over the macro tile,
// per-level granularities as exact-over-rounded ratios, and memory
// traffic from the problem's element widths.
func (m StaticModel) Project(p hipblaslt.GemmProblem, hw hipblaslt.Hardware) Projection {
	mt0 := m.MacroTile0
	if mt0 <= 0 {
		mt0 = 128
	}
	mt1 := m.MacroTile1
	if mt1 <= 0 {
		mt1 = 128
	}
	gsu := m.GlobalSplitU
	if gsu <= 0 {
		gsu = 1
	}
	threads := m.ThreadsPerWorkGroup
	if threads <= 0 {
		threads = 256
	}
	batch := p.Batch
	if batch <= 0 {
		batch = 1
	}

	tiles0 := math.Ceil(float64(p.M) / float64(mt0))
	tiles1 := math.Ceil(float64(p.N) / float64(mt1))

	var proj Projection
	proj.Tile0Granularity = granularity(float64(p.M) / float64(mt0))
	proj.Tile1Granularity = granularity(float64(p.N) / float64(mt1))

	totalTiles := tiles0 * tiles1 * float64(batch) * float64(gsu)
	cus := float64(hw.ComputeUnits)
	if cus <= 0 {
		cus = 1
	}
	natTilesPerCU := totalTiles / cus
	proj.TilesPerCU = math.Ceil(natTilesPerCU)
	proj.CUGranularity = granularity(natTilesPerCU)

	wavefront := hw.WavefrontSize
	if wavefront <= 0 {
		wavefront = 64
	}
	simds := hw.SIMDsPerCU
	if simds <= 0 {
		simds = 4
	}
	wavesPerTile := math.Ceil(float64(threads) / float64(wavefront))
	natWavesPerSIMD := proj.TilesPerCU * wavesPerTile / float64(simds)
	proj.WaveGranularity = granularity(natWavesPerSIMD)

	proj.TotalGranularity = proj.Tile0Granularity * proj.Tile1Granularity *
		proj.CUGranularity * proj.WaveGranularity

	b := float64(batch)
	proj.MemReadBytes = b * (float64(p.M)*float64(p.K)*float64(p.ABytes) +
		float64(p.K)*float64(p.N)*float64(p.BBytes))
	if p.UseBeta {
		proj.MemReadBytes += b * float64(p.M) * float64(p.N) * float64(p.CBytes)
	}
	proj.MemWriteBytes = b * float64(p.M) * float64(p.N) * float64(p.DBytes)

	return proj
}

// granularity maps an exact resource count to the fraction of its
// rounded-up allocation that does useful work.
func granularity(exact float64) float64 {
	if exact <= 0 {
		return 1
	}
	return exact / math.Ceil(exact)
}
