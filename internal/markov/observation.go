// Package markov estimates credit-migration transition matrices and derives
// the chain-level results built on them: the stationary distribution, the
// structural report and the absorbing/transient/recurrent classification.
package markov

import (
	"fmt"
	"strings"

	"gomarkov/domain/core"
)

// Observation is one observed migration of an obligor from Origin to
// Destination over a single period.
type Observation struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

func (o Observation) validate() error {
	if strings.TrimSpace(o.Origin) == "" {
		return fmt.Errorf("%w: empty origin", core.ErrMalformedPair)
	}
	if strings.TrimSpace(o.Destination) == "" {
		return fmt.Errorf("%w: empty destination", core.ErrMalformedPair)
	}
	return nil
}

// ObservationsFromPairs converts raw [origin, destination] rows, the shape
// used by the JSON payloads and spreadsheet uploads.
func ObservationsFromPairs(pairs [][]string) ([]Observation, error) {
	if len(pairs) == 0 {
		return nil, core.ErrEmptyObservations
	}

	out := make([]Observation, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: row %d has %d fields", core.ErrMalformedPair, i, len(pair))
		}
		obs := Observation{Origin: pair[0], Destination: pair[1]}
		if err := obs.validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, obs)
	}
	return out, nil
}

// Pairs is the inverse of ObservationsFromPairs.
func Pairs(observations []Observation) [][]string {
	out := make([][]string, len(observations))
	for i, o := range observations {
		out[i] = []string{o.Origin, o.Destination}
	}
	return out
}
