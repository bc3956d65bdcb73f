package markov

import (
	"math"
	"testing"

	"gomarkov/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// periodicChain oscillates between the uniform distribution and
// (1/6, 2/3, 1/6), so power iteration never settles.
var periodicChain = [][]float64{
	{0, 1, 0},
	{0.5, 0, 0.5},
	{0, 1, 0},
}

func TestStationaryDistribution_SingleState(t *testing.T) {
	res, err := StationaryDistribution([][]float64{{1}})
	require.NoError(t, err)

	assert.Equal(t, []float64{1}, res.Vector)
	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Empty(t, res.Method)
}

func TestStationaryDistribution_SwapIsAlreadyStationary(t *testing.T) {
	res, err := StationaryDistribution([][]float64{{0, 1}, {1, 0}})
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, res.Vector, 1e-12)
}

func TestStationaryDistribution_Ergodic(t *testing.T) {
	res, err := StationaryDistribution([][]float64{{0.9, 0.1}, {0.2, 0.8}})
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.InDeltaSlice(t, []float64{2.0 / 3.0, 1.0 / 3.0}, res.Vector, 1e-8)
}

func TestStationaryDistribution_AbsorbingChain(t *testing.T) {
	m := [][]float64{
		{0.90, 0.08, 0.02},
		{0.10, 0.70, 0.20},
		{0.00, 0.00, 1.00},
	}
	res, err := StationaryDistribution(m)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Greater(t, res.Iterations, 1)
	assert.InDeltaSlice(t, []float64{0, 0, 1}, res.Vector, 1e-7)
}

func TestStationaryDistribution_NormalizationFallback(t *testing.T) {
	res, err := StationaryDistribution(periodicChain)
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Equal(t, DefaultMaxIterations, res.Iterations)
	assert.Equal(t, MethodNormalization, res.Method)
	assert.InDelta(t, 1.0, floats.Sum(res.Vector), 1e-9)

	res, err = StationaryDistribution(periodicChain, WithMaxIterations(7), WithTolerance(1e-3))
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 7, res.Iterations)
	assert.InDelta(t, 1.0, floats.Sum(res.Vector), 1e-9)
}

func TestStationaryDistribution_OptionsIgnoreNonPositive(t *testing.T) {
	res, err := StationaryDistribution(periodicChain, WithMaxIterations(0), WithTolerance(-1))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxIterations, res.Iterations)
}

func TestStationaryDistribution_Idempotent(t *testing.T) {
	m := [][]float64{{0.5, 0.3, 0.2}, {0.1, 0.6, 0.3}, {0.2, 0.2, 0.6}}

	first, err := StationaryDistribution(m)
	require.NoError(t, err)
	second, err := StationaryDistribution(m)
	require.NoError(t, err)
	require.Equal(t, first, second)
	assert.InDelta(t, 1.0, floats.Sum(first.Vector), 1e-9)
}

func TestStationaryDistribution_DoesNotMutateInput(t *testing.T) {
	m := [][]float64{{0.9, 0.1}, {0.2, 0.8}}
	_, err := StationaryDistribution(m)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.9, 0.1}, {0.2, 0.8}}, m)
}

func TestStationaryDistribution_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		m    [][]float64
		opts []StationaryOption
	}{
		// mass grows tenfold per step until it overflows
		{"overflow", [][]float64{{10}}, nil},
		{"overflow in fallback", [][]float64{{10, 0}, {0, 10}}, []StationaryOption{WithMaxIterations(400)}},
		{"converges to zero mass", [][]float64{{0}}, nil},
		// first iterate is (-0.5, 0.5)
		{"zero sum at fallback", [][]float64{{0, 1}, {-1, 0}}, []StationaryOption{WithMaxIterations(1)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := StationaryDistribution(tc.m, tc.opts...)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, core.ErrNumericDegenerate)
		})
	}
}

func TestCheckDistribution(t *testing.T) {
	sum, err := checkDistribution([]float64{0.25, 0.5})
	require.NoError(t, err)
	assert.Equal(t, 0.75, sum)

	_, err = checkDistribution([]float64{math.NaN(), 1})
	assert.True(t, core.IsNumericDegenerate(err))
	_, err = checkDistribution([]float64{math.MaxFloat64, math.MaxFloat64})
	assert.True(t, core.IsNumericDegenerate(err))
}
