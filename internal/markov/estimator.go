package markov

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"gomarkov/domain/core"
)

// TransitionEstimate is the maximum-likelihood transition matrix together
// with the raw counts it was normalized from.
type TransitionEstimate struct {
	States           []string      `json:"states"`
	TransitionMatrix [][]float64   `json:"transition_matrix"`
	CountMatrix      [][]int       `json:"count_matrix"`
	Stats            EstimateStats `json:"stats"`
}

// EstimateStats summarizes the observation sample.
type EstimateStats struct {
	TotalTransitions int            `json:"total_transitions"`
	CountPerState    map[string]int `json:"count_per_state"`
	// StarvedStates lists origins with no outgoing observation. Their rows
	// are set to the unit vector, so they behave as absorbing.
	StarvedStates []string      `json:"starved_states,omitempty"`
	Origins       OriginSummary `json:"origin_summary"`
}

// OriginSummary describes how observations spread over origin states.
type OriginSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Index returns the position of state in the canonical order, or -1.
func (e *TransitionEstimate) Index(state string) int {
	i := sort.SearchStrings(e.States, state)
	if i < len(e.States) && e.States[i] == state {
		return i
	}
	return -1
}

// EstimateTransitions builds the row-stochastic transition matrix from
// observed migrations. States are the distinct labels sorted in byte order.
func EstimateTransitions(observations []Observation) (*TransitionEstimate, error) {
	if len(observations) == 0 {
		return nil, core.ErrEmptyObservations
	}
	for i, o := range observations {
		if err := o.validate(); err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
	}

	states := distinctStates(observations)
	n := len(states)
	index := make(map[string]int, n)
	for i, s := range states {
		index[s] = i
	}

	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}
	for _, o := range observations {
		counts[index[o.Origin]][index[o.Destination]]++
	}

	est := &TransitionEstimate{
		States:           states,
		TransitionMatrix: make([][]float64, n),
		CountMatrix:      counts,
		Stats: EstimateStats{
			TotalTransitions: len(observations),
			CountPerState:    make(map[string]int, n),
		},
	}

	totals := make(stats.Float64Data, n)
	for i, row := range counts {
		var total int
		for _, c := range row {
			total += c
		}
		totals[i] = float64(total)
		est.Stats.CountPerState[states[i]] = total

		probs := make([]float64, n)
		if total > 0 {
			for j, c := range row {
				probs[j] = float64(c) / float64(total)
			}
		} else {
			probs[i] = 1
			est.Stats.StarvedStates = append(est.Stats.StarvedStates, states[i])
		}
		est.TransitionMatrix[i] = probs
	}

	est.Stats.Origins = summarizeOrigins(totals)
	return est, nil
}

func distinctStates(observations []Observation) []string {
	seen := make(map[string]struct{})
	for _, o := range observations {
		seen[o.Origin] = struct{}{}
		seen[o.Destination] = struct{}{}
	}
	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

func summarizeOrigins(totals stats.Float64Data) OriginSummary {
	var s OriginSummary
	s.Mean, _ = totals.Mean()
	s.Median, _ = totals.Median()
	s.Min, _ = totals.Min()
	s.Max, _ = totals.Max()
	return s
}
