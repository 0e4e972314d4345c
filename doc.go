// Package hipblaslt provides the measurement core of a GPU kernel
// benchmarking harness: timed execution of candidate kernel solutions
// against GEMM-style problems, and conversion of elapsed device time
// into calibrated throughput metrics.
//
// The package root holds the shared core types: the hardware description,
// the problem variants, and the backend capability interface the harness
// consumes. The concrete GPU backend (device synchronization, timing
// events, asynchronous copies) is supplied by the caller; backend/host
// contains a host-clock reference implementation usable without a GPU.
//
// Basic usage:
//
//	dev := host.NewDevice()
//	timer, err := client.NewBenchmarkTimer(cfg, hw, dev, reporter, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = client.RunBenchmark(dev, problems, solutions,
//	    []client.RunListener{timer}, client.RunOptions{})
package hipblaslt
