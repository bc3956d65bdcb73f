package markov

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomarkov/domain/core"
)

func mustObservations(t *testing.T, pairs ...[]string) []Observation {
	t.Helper()
	obs, err := ObservationsFromPairs(pairs)
	require.NoError(t, err)
	return obs
}

func TestEstimateTransitions_SingleSelfLoop(t *testing.T) {
	est, err := EstimateTransitions(mustObservations(t, []string{"A", "A"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, est.States)
	assert.Equal(t, [][]float64{{1}}, est.TransitionMatrix)
	assert.Equal(t, [][]int{{1}}, est.CountMatrix)
	assert.Equal(t, 1, est.Stats.TotalTransitions)
}

func TestEstimateTransitions_Swap(t *testing.T) {
	est, err := EstimateTransitions(mustObservations(t, []string{"A", "B"}, []string{"B", "A"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, est.States)
	assert.Equal(t, [][]float64{{0, 1}, {1, 0}}, est.TransitionMatrix)
}

func TestEstimateTransitions_RowsAndCountsAgree(t *testing.T) {
	obs := mustObservations(t,
		[]string{"Sano", "Sano"}, []string{"Sano", "Sano"}, []string{"Sano", "Moroso"},
		[]string{"Moroso", "Sano"}, []string{"Moroso", "Incobrable"}, []string{"Moroso", "Moroso"},
		[]string{"Incobrable", "Incobrable"}, []string{"Sano", "Sano"},
	)
	est, err := EstimateTransitions(obs)
	require.NoError(t, err)

	assert.Equal(t, []string{"Incobrable", "Moroso", "Sano"}, est.States)
	assert.Equal(t, len(obs), est.Stats.TotalTransitions)

	for i, row := range est.TransitionMatrix {
		var sum float64
		for _, p := range row {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "row %d", i)

		var count int
		for _, c := range est.CountMatrix[i] {
			count += c
		}
		assert.Equal(t, count, est.Stats.CountPerState[est.States[i]])
	}

	sano := est.Index("Sano")
	assert.InDelta(t, 0.75, est.TransitionMatrix[sano][sano], 1e-12)
	assert.Equal(t, -1, est.Index("Perdida"))

	assert.InDelta(t, 8.0/3.0, est.Stats.Origins.Mean, 1e-12)
	assert.Equal(t, 3.0, est.Stats.Origins.Median)
	assert.Equal(t, 1.0, est.Stats.Origins.Min)
	assert.Equal(t, 4.0, est.Stats.Origins.Max)
}

func TestEstimateTransitions_StarvedStateBecomesAbsorbing(t *testing.T) {
	est, err := EstimateTransitions(mustObservations(t, []string{"A", "B"}))
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0, 1}, {0, 1}}, est.TransitionMatrix)
	assert.Equal(t, []string{"B"}, est.Stats.StarvedStates)
	assert.Equal(t, 0, est.Stats.CountPerState["B"])
}

func TestEstimateTransitions_ByteOrder(t *testing.T) {
	est, err := EstimateTransitions(mustObservations(t, []string{"b", "B"}, []string{"a", "b"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "a", "b"}, est.States)
}

func TestEstimateTransitions_InvalidInput(t *testing.T) {
	_, err := EstimateTransitions(nil)
	assert.ErrorIs(t, err, core.ErrEmptyObservations)
	assert.True(t, core.IsInvalidInput(err))

	_, err = EstimateTransitions([]Observation{{Origin: "A", Destination: " "}})
	assert.ErrorIs(t, err, core.ErrMalformedPair)
}

func TestObservationsFromPairs(t *testing.T) {
	tests := []struct {
		name    string
		pairs   [][]string
		wantErr error
	}{
		{"valid", [][]string{{"A", "B"}, {"B", "B"}}, nil},
		{"empty", [][]string{}, core.ErrEmptyObservations},
		{"triple", [][]string{{"A", "B", "C"}}, core.ErrMalformedPair},
		{"single", [][]string{{"A", "B"}, {"A"}}, core.ErrMalformedPair},
		{"blank origin", [][]string{{"", "B"}}, core.ErrMalformedPair},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			obs, err := ObservationsFromPairs(tc.pairs)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.True(t, core.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.pairs, Pairs(obs))
		})
	}
}
