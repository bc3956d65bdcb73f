// Package risk turns a transition matrix into credit-loss figures: expected
// loss per grade and deterministic stress scenarios.
package risk

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"gomarkov/domain/core"
	"gomarkov/internal/markov"
)

// DefaultStateNames are the labels recognised as the default state, in
// order of preference. When none is present the last state is used.
var DefaultStateNames = []string{"Incobrable", "Default", "Perdida", "Uncollectible", "Loss"}

// StateLoss holds the expected-loss components of one grade.
type StateLoss struct {
	EAD float64 `json:"EAD"`
	PD  float64 `json:"PD"`
	LGD float64 `json:"LGD"`
	EL  float64 `json:"EL"`
}

// LossReport aggregates EL = EAD × PD × LGD over all grades.
type LossReport struct {
	PerState     map[string]StateLoss `json:"per_state_losses"`
	TotalLoss    float64              `json:"total_loss"`
	DefaultState string               `json:"default_state"`
}

// DefaultState picks the column used as probability of default.
func DefaultState(states []string) (string, int) {
	for _, name := range DefaultStateNames {
		for i, s := range states {
			if s == name {
				return s, i
			}
		}
	}
	last := len(states) - 1
	return states[last], last
}

// ExpectedLosses computes the one-period expected loss of every grade.
// PD is the transition probability into the default state; grades missing
// from ead or lgd contribute zero.
func ExpectedLosses(matrix [][]float64, states []string, ead, lgd map[string]float64) (*LossReport, error) {
	if _, err := markov.ValidateChain(matrix, states); err != nil {
		return nil, err
	}
	if ead == nil {
		return nil, fmt.Errorf("%w: ead", core.ErrMissingField)
	}
	if lgd == nil {
		return nil, fmt.Errorf("%w: lgd", core.ErrMissingField)
	}

	name, col := DefaultState(states)
	report := &LossReport{
		PerState:     make(map[string]StateLoss, len(states)),
		DefaultState: name,
	}

	losses := make(stats.Float64Data, 0, len(states))
	for i, s := range states {
		l := StateLoss{
			EAD: ead[s],
			PD:  matrix[i][col],
			LGD: lgd[s],
		}
		l.EL = l.EAD * l.PD * l.LGD
		report.PerState[s] = l
		losses = append(losses, l.EL)
	}

	total, err := losses.Sum()
	if err != nil {
		return nil, fmt.Errorf("summing expected losses: %w", err)
	}
	report.TotalLoss = total
	return report, nil
}
