package linalg

import (
	"math"
	"sort"
)

// SVDResult lists approximate singular values in descending order.
type SVDResult struct {
	Values []float64 `json:"singular_values"`
	Max    float64   `json:"max"`
	Min    float64   `json:"min"`
}

// SingularValues approximates the singular values of m as the square roots
// of the positive approximate eigenvalues of AᵗA. Accuracy inherits the
// eigenvalue approximation, so only n <= 2 columns are exact.
func SingularValues(m [][]float64) (*SVDResult, error) {
	rows, cols, err := Shape(m)
	if err != nil {
		return nil, err
	}

	ata := Zeros(cols, cols)
	for i := 0; i < cols; i++ {
		for j := 0; j < cols; j++ {
			var sum float64
			for k := 0; k < rows; k++ {
				sum += m[k][i] * m[k][j]
			}
			ata[i][j] = sum
		}
	}

	eig, err := Eigenvalues(ata)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(eig.Real))
	for _, v := range eig.Real {
		if v > 0 {
			values = append(values, math.Sqrt(v))
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	res := &SVDResult{Values: values}
	if len(values) > 0 {
		res.Max = values[0]
		res.Min = values[len(values)-1]
	}
	return res, nil
}
