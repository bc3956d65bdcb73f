package linalg

// Power returns m^k by repeated multiplication. k=0 yields the identity and
// k=1 a copy of m.
func Power(m [][]float64, k int) ([][]float64, error) {
	n, err := SquareSize(m)
	if err != nil {
		return nil, err
	}
	if k < 0 {
		return nil, ErrNegativePower
	}
	if k == 0 {
		return Identity(n), nil
	}

	result := Clone(m)
	for i := 1; i < k; i++ {
		result, err = Multiply(result, m)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
