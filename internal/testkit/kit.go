// Package testkit holds the sample credit portfolio and a synthetic
// migration generator shared by tests and the CLI.
package testkit

import (
	"gomarkov/internal/markov"
)

// Sample portfolio: healthy, delinquent and uncollectible obligors over
// one monthly period.
var (
	SampleStates = []string{"Sano", "Moroso", "Incobrable"}

	SampleMatrix = [][]float64{
		{0.90, 0.08, 0.02},
		{0.10, 0.70, 0.20},
		{0.00, 0.00, 1.00},
	}

	SampleEAD = map[string]float64{"Sano": 1000, "Moroso": 5000, "Incobrable": 0}
	SampleLGD = map[string]float64{"Sano": 0, "Moroso": 0.3, "Incobrable": 0.5}

	SampleDelinquentFactor    = 1.2
	SampleUncollectibleFactor = 1.3
)

var sampleCounts = []struct {
	from, to string
	count    int
}{
	{"Sano", "Sano", 900},
	{"Sano", "Moroso", 80},
	{"Sano", "Incobrable", 20},
	{"Moroso", "Moroso", 70},
	{"Moroso", "Incobrable", 20},
	{"Moroso", "Sano", 10},
	{"Incobrable", "Incobrable", 100},
}

// SampleObservations returns 1200 migrations whose estimate is exactly
// SampleMatrix (in sorted state order).
func SampleObservations() []markov.Observation {
	var out []markov.Observation
	for _, c := range sampleCounts {
		for i := 0; i < c.count; i++ {
			out = append(out, markov.Observation{Origin: c.from, Destination: c.to})
		}
	}
	return out
}

// SamplePairs returns SampleObservations as raw [origin, destination] rows.
func SamplePairs() [][]string {
	return markov.Pairs(SampleObservations())
}

// Payload is the combined example request body accepted by the API.
type Payload struct {
	Observations [][]string         `json:"registros"`
	Matrix       [][]float64        `json:"matriz_transicion"`
	States       []string           `json:"estados"`
	EAD          map[string]float64 `json:"ead"`
	LGD          map[string]float64 `json:"lgd"`
	Stress       map[string]float64 `json:"factores_stress"`
}

// SamplePayload bundles every sample fixture.
func SamplePayload() Payload {
	return Payload{
		Observations: SamplePairs(),
		Matrix:       SampleMatrix,
		States:       SampleStates,
		EAD:          SampleEAD,
		LGD:          SampleLGD,
		Stress: map[string]float64{
			"factor_moroso":     SampleDelinquentFactor,
			"factor_incobrable": SampleUncollectibleFactor,
		},
	}
}
