package testkit

import (
	"fmt"
	"math/rand"
	"time"

	"gomarkov/internal/markov"
)

// MigrationGeneratorConfig configures the synthetic migration generator
type MigrationGeneratorConfig struct {
	Obligors     int         `json:"obligors"`
	Periods      int         `json:"periods"`
	States       []string    `json:"states"`
	Matrix       [][]float64 `json:"matrix"`
	InitialState string      `json:"initial_state"`
	StartDate    time.Time   `json:"start_date"`
	Seed         int64       `json:"seed"`
}

// DefaultMigrationConfig simulates the sample portfolio for a year
func DefaultMigrationConfig() MigrationGeneratorConfig {
	return MigrationGeneratorConfig{
		Obligors:     500,
		Periods:      12,
		States:       SampleStates,
		Matrix:       SampleMatrix,
		InitialState: "Sano",
		StartDate:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Seed:         42,
	}
}

// Migration is one simulated observation with its obligor and period end.
type Migration struct {
	ObligorID  string
	ObservedAt time.Time
	markov.Observation
}

// MigrationGenerator walks obligors through a known chain
type MigrationGenerator struct {
	config MigrationGeneratorConfig
	rng    *rand.Rand
	index  map[string]int
}

// NewMigrationGenerator creates a generator; the matrix must be square and
// match the states.
func NewMigrationGenerator(config MigrationGeneratorConfig) (*MigrationGenerator, error) {
	if _, err := markov.ValidateChain(config.Matrix, config.States); err != nil {
		return nil, err
	}
	index := make(map[string]int, len(config.States))
	for i, s := range config.States {
		index[s] = i
	}
	if _, ok := index[config.InitialState]; !ok {
		return nil, fmt.Errorf("initial state %q is not one of %v", config.InitialState, config.States)
	}
	return &MigrationGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
		index:  index,
	}, nil
}

// Generate produces Obligors×Periods migrations, obligor by obligor
func (g *MigrationGenerator) Generate() []Migration {
	out := make([]Migration, 0, g.config.Obligors*g.config.Periods)
	for o := 0; o < g.config.Obligors; o++ {
		id := fmt.Sprintf("obligor_%05d", o+1)
		cur := g.index[g.config.InitialState]
		for p := 0; p < g.config.Periods; p++ {
			next := g.step(cur)
			out = append(out, Migration{
				ObligorID:  id,
				ObservedAt: g.config.StartDate.AddDate(0, p, 0),
				Observation: markov.Observation{
					Origin:      g.config.States[cur],
					Destination: g.config.States[next],
				},
			})
			cur = next
		}
	}
	return out
}

// Observations drops obligor and date information
func (g *MigrationGenerator) Observations() []markov.Observation {
	migrations := g.Generate()
	out := make([]markov.Observation, len(migrations))
	for i, m := range migrations {
		out[i] = m.Observation
	}
	return out
}

func (g *MigrationGenerator) step(from int) int {
	u := g.rng.Float64()
	var acc float64
	row := g.config.Matrix[from]
	for j, p := range row {
		acc += p
		if u < acc {
			return j
		}
	}
	return from
}
