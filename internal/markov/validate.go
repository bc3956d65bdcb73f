package markov

import (
	"fmt"

	"gomarkov/domain/core"
	"gomarkov/internal/linalg"
)

const (
	// StochasticTolerance bounds how far a row (or column) sum may drift from 1.
	StochasticTolerance = 1e-6

	// AbsorbingTolerance: a state is absorbing when T[i][i] >= 1-AbsorbingTolerance.
	AbsorbingTolerance = 1e-6

	// SupportTolerance is the probability above which an edge exists.
	SupportTolerance = linalg.ZeroTolerance
)

// ValidateChain checks that matrix is a non-empty square matrix labelled by
// exactly one state per row.
func ValidateChain(matrix [][]float64, states []string) (int, error) {
	n, err := linalg.SquareSize(matrix)
	if err != nil {
		return 0, err
	}
	if len(states) != n {
		return 0, fmt.Errorf("%w: %d states for a %dx%d matrix", core.ErrShapeMismatch, len(states), n, n)
	}
	return n, nil
}

func isAbsorbing(matrix [][]float64, i int) bool {
	return matrix[i][i] >= 1-AbsorbingTolerance
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
