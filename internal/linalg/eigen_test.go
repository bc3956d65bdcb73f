package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomarkov/domain/core"
)

func TestEigenvalues_TwoByTwoExact(t *testing.T) {
	res, err := Eigenvalues([][]float64{{0.9, 0.1}, {0.2, 0.8}})
	require.NoError(t, err)

	require.Len(t, res.Values, 2)
	assert.InDelta(t, 1.0, res.Values[0], 1e-12)
	assert.InDelta(t, 0.7, res.Values[1], 1e-12)
	assert.InDelta(t, 1.0, res.Dominant, 1e-12)
	assert.True(t, res.Exact)
	assert.False(t, res.Complex)
}

func TestEigenvalues_ComplexPairKeepsRealPart(t *testing.T) {
	// 90 degree rotation: eigenvalues ±i
	res, err := Eigenvalues([][]float64{{0, -1}, {1, 0}})
	require.NoError(t, err)

	assert.True(t, res.Complex)
	assert.Equal(t, []float64{0, 0}, res.Values)
	assert.Equal(t, []float64{0, 0}, res.Moduli)
	assert.InDelta(t, 1, res.Imaginary[0], 1e-12)
	assert.InDelta(t, -1, res.Imaginary[1], 1e-12)
}

func TestEigenvalues_OneByOne(t *testing.T) {
	res, err := Eigenvalues([][]float64{{-3}})
	require.NoError(t, err)
	assert.Equal(t, []float64{-3}, res.Values)
	assert.Equal(t, 3.0, res.Dominant)
}

func TestEigenvalues_ThreeByThreeDeflation(t *testing.T) {
	m := [][]float64{
		{3, 0, 0},
		{0, 1, 0},
		{0, 0, 0.5},
	}
	res, err := Eigenvalues(m)
	require.NoError(t, err)

	require.Len(t, res.Values, 3)
	assert.InDelta(t, 3, res.Values[0], 1e-9)
	assert.InDelta(t, 1, res.Values[1], 1e-9)
	assert.InDelta(t, 0.5, res.Values[2], 1e-9)
	assert.False(t, res.Exact)
	require.Len(t, res.DominantVector, 3)
	assert.InDelta(t, 1, res.DominantVector[0], 1e-9)
}

func TestEigenvalues_StochasticDominantNearOne(t *testing.T) {
	res, err := Eigenvalues(sampleMatrix)
	require.NoError(t, err)

	// Second eigenvalue is ~0.934, so 100 iterations only get close.
	assert.InDelta(t, 1.0, res.Dominant, 0.05)
	for i := 1; i < len(res.Moduli); i++ {
		assert.GreaterOrEqual(t, res.Moduli[i-1], res.Moduli[i])
	}
}

func TestEigenvalues_LargerMatricesSplitResidualTrace(t *testing.T) {
	m := [][]float64{
		{4, 0, 0, 0},
		{0, 2, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	res, err := Eigenvalues(m)
	require.NoError(t, err)

	// Approximate by contract: the tail is (trace - dominant)/(n-1).
	assert.InDelta(t, 4, res.Values[0], 1e-6)
	rest := (8 - res.Values[0]) / 3
	for _, v := range res.Values[1:] {
		assert.InDelta(t, rest, v, 1e-9)
	}
}

func TestEigenvalues_ZeroDominantIsDegenerate(t *testing.T) {
	nilpotent := [][]float64{
		{0, 1, 0},
		{0, 0, 1},
		{0, 0, 0},
	}
	_, err := Eigenvalues(nilpotent)
	assert.ErrorIs(t, err, core.ErrNumericDegenerate)
}

func TestSingularValues(t *testing.T) {
	res, err := SingularValues([][]float64{{3, 0}, {0, 2}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 2}, res.Values, 1e-12)
	assert.InDelta(t, 3, res.Max, 1e-12)
	assert.InDelta(t, 2, res.Min, 1e-12)

	res, err = SingularValues([][]float64{{3, 4}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{5}, res.Values, 1e-12)

	res, err = SingularValues(Zeros(2, 2))
	require.NoError(t, err)
	assert.Empty(t, res.Values)
	assert.Equal(t, 0.0, res.Max)
	assert.Equal(t, 0.0, res.Min)
}
