package linalg

import (
	"encoding/json"
	"math"
)

// FrobeniusNorm is the root of the sum of squared entries.
func FrobeniusNorm(m [][]float64) float64 {
	var sum float64
	for _, row := range m {
		for _, v := range row {
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}

// OneNorm is the maximum absolute column sum.
func OneNorm(m [][]float64) float64 {
	var max float64
	for _, s := range ColumnSums(absolute(m)) {
		if s > max {
			max = s
		}
	}
	return max
}

// InfinityNorm is the maximum absolute row sum.
func InfinityNorm(m [][]float64) float64 {
	var max float64
	for _, s := range RowSums(absolute(m)) {
		if s > max {
			max = s
		}
	}
	return max
}

func absolute(m [][]float64) [][]float64 {
	out := Clone(m)
	for _, row := range out {
		for j, v := range row {
			row[j] = math.Abs(v)
		}
	}
	return out
}

// Condition is a condition-number estimate. Infinity marks a (near) singular
// matrix and is serialized as the string "Infinity".
type Condition float64

// IsInfinite reports whether the matrix was treated as singular.
func (c Condition) IsInfinite() bool {
	return math.IsInf(float64(c), 1)
}

func (c Condition) MarshalJSON() ([]byte, error) {
	if c.IsInfinite() {
		return []byte(`"Infinity"`), nil
	}
	return json.Marshal(float64(c))
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*c = Condition(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Condition(v)
	return nil
}

// ConditionNumber returns a heuristic condition estimate: the squared
// infinity norm when |det| >= SingularTolerance, +Inf otherwise.
//
// This is NOT ||A||·||A⁻¹||. It only separates well-posed matrices from
// singular ones and grows with the scale of the entries.
func ConditionNumber(m [][]float64) (Condition, error) {
	det, err := Determinant(m)
	if err != nil {
		return 0, err
	}
	if math.Abs(det) < SingularTolerance {
		return Condition(math.Inf(1)), nil
	}
	norm := InfinityNorm(m)
	return Condition(norm * norm), nil
}
