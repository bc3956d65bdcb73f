package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomarkov/internal/markov"
)

func TestSampleObservations_EstimateMatchesSampleMatrix(t *testing.T) {
	est, err := markov.EstimateTransitions(SampleObservations())
	require.NoError(t, err)

	assert.Equal(t, 1200, est.Stats.TotalTransitions)
	for i, from := range SampleStates {
		for j, to := range SampleStates {
			got := est.TransitionMatrix[est.Index(from)][est.Index(to)]
			assert.InDelta(t, SampleMatrix[i][j], got, 1e-12, "%s->%s", from, to)
		}
	}
}

func TestMigrationGenerator_Deterministic(t *testing.T) {
	cfg := DefaultMigrationConfig()
	cfg.Obligors = 20

	g1, err := NewMigrationGenerator(cfg)
	require.NoError(t, err)
	g2, err := NewMigrationGenerator(cfg)
	require.NoError(t, err)

	first := g1.Generate()
	assert.Len(t, first, 20*cfg.Periods)
	assert.Equal(t, first, g2.Generate())

	for i, m := range first {
		if m.ObligorID == "" {
			t.Errorf("migration %d has empty obligor", i)
		}
	}
}

func TestMigrationGenerator_ChainIsConsistent(t *testing.T) {
	cfg := DefaultMigrationConfig()
	cfg.Obligors = 5
	g, err := NewMigrationGenerator(cfg)
	require.NoError(t, err)

	migrations := g.Generate()
	for i := 1; i < len(migrations); i++ {
		prev, cur := migrations[i-1], migrations[i]
		if prev.ObligorID != cur.ObligorID {
			assert.Equal(t, cfg.InitialState, cur.Origin)
			continue
		}
		assert.Equal(t, prev.Destination, cur.Origin)
		assert.True(t, cur.ObservedAt.After(prev.ObservedAt))
		if prev.Destination == "Incobrable" {
			assert.Equal(t, "Incobrable", cur.Destination, "absorbing state must hold")
		}
	}
}

func TestMigrationGenerator_RecoversMatrix(t *testing.T) {
	cfg := DefaultMigrationConfig()
	cfg.Obligors = 4000
	g, err := NewMigrationGenerator(cfg)
	require.NoError(t, err)

	est, err := markov.EstimateTransitions(g.Observations())
	require.NoError(t, err)
	sano := est.Index("Sano")
	assert.InDelta(t, 0.90, est.TransitionMatrix[sano][sano], 0.01)
}

func TestNewMigrationGenerator_Invalid(t *testing.T) {
	cfg := DefaultMigrationConfig()
	cfg.InitialState = "Unknown"
	_, err := NewMigrationGenerator(cfg)
	assert.Error(t, err)

	cfg = DefaultMigrationConfig()
	cfg.States = []string{"A"}
	_, err = NewMigrationGenerator(cfg)
	assert.Error(t, err)
}
