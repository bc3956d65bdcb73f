package linalg

import "math"

// Determinant computes det(m) by cofactor expansion along the first row.
// The cost grows factorially with n, which is acceptable for the handful of
// states a migration matrix carries.
func Determinant(m [][]float64) (float64, error) {
	if _, err := SquareSize(m); err != nil {
		return 0, err
	}
	return cofactorDeterminant(m), nil
}

func cofactorDeterminant(m [][]float64) float64 {
	n := len(m)
	switch n {
	case 1:
		return m[0][0]
	case 2:
		return m[0][0]*m[1][1] - m[0][1]*m[1][0]
	}

	var det float64
	sign := 1.0
	for j := 0; j < n; j++ {
		if m[0][j] != 0 {
			det += sign * m[0][j] * cofactorDeterminant(minor(m, 0, j))
		}
		sign = -sign
	}
	return det
}

// minor drops row r and column c.
func minor(m [][]float64, r, c int) [][]float64 {
	n := len(m)
	out := make([][]float64, 0, n-1)
	for i := 0; i < n; i++ {
		if i == r {
			continue
		}
		row := make([]float64, 0, n-1)
		for j := 0; j < n; j++ {
			if j != c {
				row = append(row, m[i][j])
			}
		}
		out = append(out, row)
	}
	return out
}

// Trace returns the sum of the diagonal of a square matrix.
func Trace(m [][]float64) (float64, error) {
	n, err := SquareSize(m)
	if err != nil {
		return 0, err
	}
	var tr float64
	for i := 0; i < n; i++ {
		tr += m[i][i]
	}
	return tr, nil
}

// Rank counts the pivot rows left by Gaussian elimination. A pivot whose
// magnitude is below ZeroTolerance counts as zero. Rectangular input is allowed
// and every column is searched for pivots.
func Rank(m [][]float64) (int, error) {
	rows, cols, err := Shape(m)
	if err != nil {
		return 0, err
	}

	work := Clone(m)
	rank := 0
	for col := 0; col < cols && rank < rows; col++ {
		pivot := rank
		for pivot < rows && math.Abs(work[pivot][col]) < ZeroTolerance {
			pivot++
		}
		if pivot == rows {
			continue
		}
		if pivot != rank {
			work[pivot], work[rank] = work[rank], work[pivot]
		}

		p := work[rank][col]
		for i := rank + 1; i < rows; i++ {
			factor := work[i][col] / p
			for j := col; j < cols; j++ {
				work[i][j] -= factor * work[rank][j]
			}
		}
		rank++
	}
	return rank, nil
}
