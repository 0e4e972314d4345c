package hipblaslt

import "errors"

// ErrUnsupportedProblem is returned when a workload reference cannot be
// classified as any recognized problem variant. It is fatal to the
// current benchmarking session.
var ErrUnsupportedProblem = errors.New("hipblaslt: problem is neither a GemmProblem nor a GroupedGemmProblem")

// Problem is a workload descriptor handed to a solution for execution.
// The two supported variants are GemmProblem and GroupedGemmProblem;
// any other implementation fails classification.
type Problem interface {
	problemVariant()
}

// GemmProblem describes a single batched GEMM workload:
// C[b] = alpha*A[b]*B[b] + beta*C[b] for b in [0, Batch).
type GemmProblem struct {
	Name    string
	M, N, K int
	Batch   int
	// Element byte widths for the input and output tensors.
	ABytes, BBytes, CBytes, DBytes int
	// UseBeta indicates C is read as well as written.
	UseBeta bool
}

func (GemmProblem) problemVariant() {}

// FlopCount returns the floating-point operation count for one enqueue
// of this problem: one multiply and one add per inner-product term.
func (p GemmProblem) FlopCount() float64 {
	batch := p.Batch
	if batch == 0 {
		batch = 1
	}
	return 2.0 * float64(p.M) * float64(p.N) * float64(p.K) * float64(batch)
}

// GroupedGemmProblem is a grouped workload: several GEMMs dispatched as
// one enqueue. Gemms must be non-empty.
type GroupedGemmProblem struct {
	Name  string
	Gemms []GemmProblem
}

func (GroupedGemmProblem) problemVariant() {}

// PrimaryGemm classifies a problem and returns the GEMM the performance
// model projects against: the problem itself for a single workload, the
// first group member for a grouped workload.
func PrimaryGemm(p Problem) (GemmProblem, error) {
	switch v := p.(type) {
	case GemmProblem:
		return v, nil
	case *GemmProblem:
		return *v, nil
	case GroupedGemmProblem:
		if len(v.Gemms) == 0 {
			return GemmProblem{}, ErrUnsupportedProblem
		}
		return v.Gemms[0], nil
	case *GroupedGemmProblem:
		if len(v.Gemms) == 0 {
			return GemmProblem{}, ErrUnsupportedProblem
		}
		return v.Gemms[0], nil
	default:
		return GemmProblem{}, ErrUnsupportedProblem
	}
}

// ProblemFlops classifies a problem and returns its total FLOP count per
// enqueue, summed across all sub-workloads for a grouped problem.
func ProblemFlops(p Problem) (float64, error) {
	switch v := p.(type) {
	case GemmProblem:
		return v.FlopCount(), nil
	case *GemmProblem:
		return v.FlopCount(), nil
	case GroupedGemmProblem:
		return groupedFlops(v.Gemms), nil
	case *GroupedGemmProblem:
		return groupedFlops(v.Gemms), nil
	default:
		return 0, ErrUnsupportedProblem
	}
}

func groupedFlops(gemms []GemmProblem) float64 {
	var total float64
	for _, g := range gemms {
		total += g.FlopCount()
	}
	return total
}
