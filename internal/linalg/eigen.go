package linalg

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"gomarkov/domain/core"
)

// EigenResult holds approximate eigenvalues ranked by descending modulus.
//
// Values and Moduli follow the legacy contract: for a complex-conjugate pair
// only the real part is kept, so the pair shows up as two equal real values
// and the modulus is |real part|. Imaginary carries the computed imaginary
// parts aligned with Values for callers that need them.
type EigenResult struct {
	Values         []float64 `json:"values"`
	Real           []float64 `json:"real"`
	Imaginary      []float64 `json:"imaginary"`
	Moduli         []float64 `json:"moduli"`
	Dominant       float64   `json:"dominant"`
	DominantVector []float64 `json:"dominant_vector,omitempty"`
	Complex        bool      `json:"complex"`
	Exact          bool      `json:"exact"`
}

// Eigenvalues approximates the eigenvalues of a square matrix.
//
//   - n <= 2: exact, via the quadratic on trace and determinant.
//   - n >= 3: the dominant value comes from EigenIterations steps of power
//     iteration (row vector times matrix) and a Rayleigh quotient.
//   - n == 3: the other two solve the quadratic with sum trace-λ1 and
//     product det/λ1.
//   - n > 3: the other n-1 values are each (trace-λ1)/(n-1). This is a crude
//     split of the residual trace, not a deflation.
func Eigenvalues(m [][]float64) (*EigenResult, error) {
	n, err := SquareSize(m)
	if err != nil {
		return nil, err
	}

	var (
		re, im []float64
		vector []float64
		exact  bool
	)

	switch {
	case n == 1:
		re, im = []float64{m[0][0]}, []float64{0}
		exact = true

	case n == 2:
		tr := m[0][0] + m[1][1]
		det := cofactorDeterminant(m)
		re, im = quadraticRoots(tr, det)
		exact = true

	default:
		var lambda float64
		lambda, vector = dominantEigen(m)
		tr, _ := Trace(m)

		re, im = []float64{lambda}, []float64{0}
		if n == 3 {
			if math.Abs(lambda) < ZeroTolerance {
				return nil, core.NewDegenerateError("eigenvalues", "dominant eigenvalue is zero, cannot deflate")
			}
			det := cofactorDeterminant(m)
			r, i := quadraticRoots(tr-lambda, det/lambda)
			re = append(re, r...)
			im = append(im, i...)
		} else {
			rest := (tr - lambda) / float64(n-1)
			for k := 1; k < n; k++ {
				re = append(re, rest)
				im = append(im, 0)
			}
		}
	}

	return rankByModulus(re, im, vector, exact), nil
}

// quadraticRoots solves x² - sum·x + product = 0. A negative discriminant
// yields the real part twice with ±imaginary parts.
func quadraticRoots(sum, product float64) (re, im []float64) {
	disc := sum*sum - 4*product
	if disc >= 0 {
		sq := math.Sqrt(disc)
		return []float64{(sum + sq) / 2, (sum - sq) / 2}, []float64{0, 0}
	}
	re0 := sum / 2
	im0 := math.Sqrt(-disc) / 2
	return []float64{re0, re0}, []float64{im0, -im0}
}

// dominantEigen runs the fixed power-iteration budget from the normalized
// all-ones vector and returns the Rayleigh quotient with the final vector.
func dominantEigen(m [][]float64) (float64, []float64) {
	n := len(m)
	v := make([]float64, n)
	for i := range v {
		v[i] = 1 / math.Sqrt(float64(n))
	}

	for iter := 0; iter < EigenIterations; iter++ {
		next := VecMul(v, m)
		norm := floats.Norm(next, 2)
		if norm < ZeroTolerance {
			break
		}
		floats.ScaleTo(v, 1/norm, next)
	}

	return floats.Dot(VecMul(v, m), v), v
}

func rankByModulus(re, im, vector []float64, exact bool) *EigenResult {
	n := len(re)
	moduli := make([]float64, n)
	for i, v := range re {
		moduli[i] = math.Abs(v)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return moduli[idx[a]] > moduli[idx[b]]
	})

	res := &EigenResult{
		Values:         make([]float64, n),
		Real:           make([]float64, n),
		Imaginary:      make([]float64, n),
		Moduli:         make([]float64, n),
		DominantVector: vector,
		Exact:          exact,
	}
	for pos, i := range idx {
		res.Values[pos] = re[i]
		res.Real[pos] = re[i]
		res.Imaginary[pos] = im[i]
		res.Moduli[pos] = moduli[i]
		if im[i] != 0 {
			res.Complex = true
		}
	}
	if n > 0 {
		res.Dominant = res.Moduli[0]
	}
	return res
}
