package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"gomarkov/domain/core"
	"gomarkov/internal/linalg"
	"gomarkov/internal/markov"
)

var (
	// DelinquentKeywords select the delinquent column (case-insensitive substring).
	DelinquentKeywords = []string{"moroso", "delinquent"}
	// UncollectibleKeywords select the uncollectible column.
	UncollectibleKeywords = []string{"incobrable", "default", "uncollectible"}
)

// StressParams are the multiplicative shocks applied to the delinquent and
// uncollectible columns.
type StressParams struct {
	Delinquent    float64 `json:"factor_moroso"`
	Uncollectible float64 `json:"factor_incobrable"`
}

// DefaultStressParams is the standard adverse scenario.
func DefaultStressParams() StressParams {
	return StressParams{Delinquent: 1.2, Uncollectible: 1.3}
}

// Validate rejects non-positive and non-finite factors.
func (p StressParams) Validate() error {
	factors := []struct {
		name  string
		value float64
	}{
		{"factor_moroso", p.Delinquent},
		{"factor_incobrable", p.Uncollectible},
	}
	for _, f := range factors {
		if f.value <= 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return core.NewInvalidInputError(f.name, fmt.Sprintf("must be a positive finite number, got %v", f.value))
		}
	}
	return nil
}

// StressResult compares the base chain with its stressed version.
type StressResult struct {
	StressedMatrix     [][]float64  `json:"stressed_matrix"`
	BaseStationary     []float64    `json:"base_stationary"`
	StressedStationary []float64    `json:"stressed_stationary"`
	Factors            StressParams `json:"factors"`

	DelinquentState    string `json:"delinquent_state,omitempty"`
	UncollectibleState string `json:"uncollectible_state,omitempty"`

	// Shift is stressed minus base stationary mass per state.
	Shift    []float64 `json:"stationary_shift"`
	MaxShift float64   `json:"max_abs_shift"`
}

// ApplyStress scales the delinquent and uncollectible columns, renormalizes
// every row with a positive sum and recomputes both stationary distributions.
// When several states match a keyword the last one wins; unmatched columns
// are left alone.
func ApplyStress(matrix [][]float64, states []string, params StressParams, opts ...markov.StationaryOption) (*StressResult, error) {
	if _, err := markov.ValidateChain(matrix, states); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	delinquent := lastMatch(states, DelinquentKeywords)
	uncollectible := lastMatch(states, UncollectibleKeywords)

	stressed := linalg.Clone(matrix)
	for _, row := range stressed {
		if delinquent >= 0 {
			row[delinquent] *= params.Delinquent
		}
		if uncollectible >= 0 {
			row[uncollectible] *= params.Uncollectible
		}
		var sum float64
		for _, v := range row {
			sum += v
		}
		if sum > 0 {
			for j := range row {
				row[j] /= sum
			}
		}
	}

	base, err := markov.StationaryDistribution(matrix, opts...)
	if err != nil {
		return nil, fmt.Errorf("base chain: %w", err)
	}
	shocked, err := markov.StationaryDistribution(stressed, opts...)
	if err != nil {
		return nil, fmt.Errorf("stressed chain: %w", err)
	}

	res := &StressResult{
		StressedMatrix:     stressed,
		BaseStationary:     base.Vector,
		StressedStationary: shocked.Vector,
		Factors:            params,
		Shift:              make([]float64, len(states)),
	}
	if delinquent >= 0 {
		res.DelinquentState = states[delinquent]
	}
	if uncollectible >= 0 {
		res.UncollectibleState = states[uncollectible]
	}

	abs := make(stats.Float64Data, len(states))
	for i := range res.Shift {
		res.Shift[i] = shocked.Vector[i] - base.Vector[i]
		abs[i] = math.Abs(res.Shift[i])
	}
	res.MaxShift, _ = abs.Max()
	return res, nil
}

func lastMatch(states []string, keywords []string) int {
	idx := -1
	for i, s := range states {
		lower := strings.ToLower(s)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				idx = i
				break
			}
		}
	}
	return idx
}
