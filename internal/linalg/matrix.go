// Package linalg is the small dense-matrix toolkit behind the transition
// matrix diagnostics: determinant, rank, norms, powers and the eigen/singular
// value approximations. Matrices are [][]float64 in row-major order and no
// function in this package modifies its arguments.
//
// The toolkit targets chains with a handful of risk grades. Determinants use
// cofactor expansion and eigenvalues beyond 2x2 are approximations, so it is
// not a general-purpose linear algebra library.
package linalg

import (
	"math"
)

const (
	// ZeroTolerance is the magnitude below which a pivot, norm or transition
	// probability is treated as zero.
	ZeroTolerance = 1e-10

	// SingularTolerance is the determinant magnitude below which the condition
	// number is reported as infinite.
	SingularTolerance = 1e-10

	// EigenIterations is the fixed power-iteration budget for the dominant eigenvalue.
	EigenIterations = 100
)

// Shape validates m and returns its dimensions. Empty and ragged matrices are rejected.
func Shape(m [][]float64) (rows, cols int, err error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return 0, 0, ErrEmptyMatrix
	}
	cols = len(m[0])
	for _, row := range m {
		if len(row) != cols {
			return 0, 0, ErrRaggedMatrix
		}
	}
	return len(m), cols, nil
}

// SquareSize validates that m is a non-empty square matrix and returns n.
func SquareSize(m [][]float64) (int, error) {
	rows, cols, err := Shape(m)
	if err != nil {
		return 0, err
	}
	if rows != cols {
		return 0, ErrNonSquare
	}
	return rows, nil
}

// CheckFinite rejects matrices holding NaN or ±Inf.
func CheckFinite(m [][]float64) error {
	for _, row := range m {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return ErrNonFinite
			}
		}
	}
	return nil
}

// Clone returns a deep copy of m.
func Clone(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Identity returns the n x n identity matrix.
func Identity(n int) [][]float64 {
	out := Zeros(n, n)
	for i := 0; i < n; i++ {
		out[i][i] = 1
	}
	return out
}

// Zeros allocates a rows x cols zero matrix.
func Zeros(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

// Multiply returns a·b.
func Multiply(a, b [][]float64) ([][]float64, error) {
	ar, ac, err := Shape(a)
	if err != nil {
		return nil, err
	}
	br, bc, err := Shape(b)
	if err != nil {
		return nil, err
	}
	if ac != br {
		return nil, ErrDimensionMismatch
	}

	out := Zeros(ar, bc)
	for i := 0; i < ar; i++ {
		for j := 0; j < bc; j++ {
			var sum float64
			for k := 0; k < ac; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out, nil
}

// VecMul returns the row vector v·m (left multiplication). len(v) must equal
// the number of rows of m; callers are expected to have validated shapes.
func VecMul(v []float64, m [][]float64) []float64 {
	if len(m) == 0 {
		return nil
	}
	out := make([]float64, len(m[0]))
	for j := range out {
		var sum float64
		for i := range v {
			sum += v[i] * m[i][j]
		}
		out[j] = sum
	}
	return out
}

// Submatrix extracts the rows and columns listed in idx, in that order.
func Submatrix(m [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for a, i := range idx {
		out[a] = make([]float64, len(idx))
		for b, j := range idx {
			out[a][b] = m[i][j]
		}
	}
	return out
}

// RowSums returns the sum of every row.
func RowSums(m [][]float64) []float64 {
	sums := make([]float64, len(m))
	for i, row := range m {
		for _, v := range row {
			sums[i] += v
		}
	}
	return sums
}

// ColumnSums returns the sum of every column of a rectangular matrix.
func ColumnSums(m [][]float64) []float64 {
	if len(m) == 0 {
		return nil
	}
	sums := make([]float64, len(m[0]))
	for _, row := range m {
		for j, v := range row {
			sums[j] += v
		}
	}
	return sums
}
