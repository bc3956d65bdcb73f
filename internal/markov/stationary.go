package markov

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"gomarkov/domain/core"
	"gomarkov/internal/linalg"
)

const (
	DefaultTolerance     = 1e-10
	DefaultMaxIterations = 1000

	// MethodNormalization marks a result produced by renormalizing the last
	// iterate after the iteration budget ran out.
	MethodNormalization = "normalization"
)

// StationaryResult is the outcome of power iteration. A result with
// Converged=false is still a probability vector and is usable.
type StationaryResult struct {
	Vector     []float64 `json:"vector"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	Method     string    `json:"method,omitempty"`
}

type stationaryConfig struct {
	tolerance     float64
	maxIterations int
}

// StationaryOption tunes the stationary solver.
type StationaryOption func(*stationaryConfig)

// WithTolerance sets the Euclidean stopping distance. Non-positive values keep the default.
func WithTolerance(tol float64) StationaryOption {
	return func(c *stationaryConfig) {
		if tol > 0 {
			c.tolerance = tol
		}
	}
}

// WithMaxIterations caps the iteration count. Non-positive values keep the default.
func WithMaxIterations(n int) StationaryOption {
	return func(c *stationaryConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// StationaryDistribution runs π' = πT from the uniform distribution until
// two consecutive iterates are closer than the tolerance.
//
// The matrix is not validated; callers pass a square row-stochastic matrix.
// Periodic chains never converge and fall back to the normalized last iterate.
// An iterate that sums to zero or overflows is a NumericDegenerate error.
func StationaryDistribution(matrix [][]float64, opts ...StationaryOption) (*StationaryResult, error) {
	cfg := stationaryConfig{
		tolerance:     DefaultTolerance,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := len(matrix)
	if n == 0 {
		return &StationaryResult{Vector: []float64{}, Iterations: 1, Converged: true}, nil
	}

	pi := make([]float64, n)
	for i := range pi {
		pi[i] = 1 / float64(n)
	}

	for iter := 0; iter < cfg.maxIterations; iter++ {
		next := linalg.VecMul(pi, matrix)
		if floats.Distance(next, pi, 2) < cfg.tolerance {
			if _, err := checkDistribution(next); err != nil {
				return nil, err
			}
			return &StationaryResult{
				Vector:     next,
				Iterations: iter + 1,
				Converged:  true,
			}, nil
		}
		pi = next
	}

	sum, err := checkDistribution(pi)
	if err != nil {
		return nil, err
	}
	floats.Scale(1/sum, pi)
	return &StationaryResult{
		Vector:     pi,
		Iterations: cfg.maxIterations,
		Converged:  false,
		Method:     MethodNormalization,
	}, nil
}

// checkDistribution returns the sum of v, failing when v cannot be scaled
// into a probability vector.
func checkDistribution(v []float64) (float64, error) {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, core.NewDegenerateError("stationary", "iterate is not finite")
		}
	}
	sum := floats.Sum(v)
	if sum == 0 || math.IsInf(sum, 0) {
		return 0, core.NewDegenerateError("stationary", "iterate has zero or unbounded mass")
	}
	return sum, nil
}
