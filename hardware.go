package hipblaslt

// Hardware describes the execution hardware a benchmark runs on. The
// performance model uses it to estimate occupancy; the timing harness
// uses the compute-unit count to normalize throughput.
type Hardware struct {
	Name          string
	ComputeUnits  int
	WavefrontSize int
	SIMDsPerCU    int
	ClockMHz      int
}

// DefaultHardware returns a generic CDNA-class device description,
// useful when no device query layer is wired in.
func DefaultHardware() Hardware {
	return Hardware{
		Name:          "generic-gfx",
		ComputeUnits:  104,
		WavefrontSize: 64,
		SIMDsPerCU:    4,
		ClockMHz:      1700,
	}
}
