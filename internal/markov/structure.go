package markov

import (
	"math"

	"gomarkov/internal/linalg"
)

// StructuralProperties is the chain-level structural report.
type StructuralProperties struct {
	Stochastic          bool      `json:"stochastic"`
	RowSums             []float64 `json:"row_sums"`
	StochasticDeviation float64   `json:"stochastic_deviation"`
	DoublyStochastic    bool      `json:"doubly_stochastic"`
	ColumnSums          []float64 `json:"column_sums"`

	// Communication[i][j] reports whether j is reachable from i in zero or
	// more steps.
	Communication [][]bool `json:"communication"`
	Irreducible   bool     `json:"irreducible"`

	// Periods holds, per state, the gcd of the return times found among
	// self-loops (1) and mutual pairs (2); 0 when neither exists. Longer
	// cycles are not searched.
	Periods   []int `json:"periods"`
	Aperiodic bool  `json:"aperiodic"`
	Ergodic   bool  `json:"ergodic"`

	AbsorbingStates    []string `json:"absorbing_states"`
	HasAbsorbingStates bool     `json:"has_absorbing_states"`
}

// AnalyzeStructure derives stochasticity, communication, periodicity and
// absorbing states for a labelled chain.
func AnalyzeStructure(matrix [][]float64, states []string) (*StructuralProperties, error) {
	n, err := ValidateChain(matrix, states)
	if err != nil {
		return nil, err
	}

	p := &StructuralProperties{
		RowSums:         linalg.RowSums(matrix),
		ColumnSums:      linalg.ColumnSums(matrix),
		AbsorbingStates: []string{},
	}

	p.Stochastic = true
	for _, s := range p.RowSums {
		dev := math.Abs(s - 1)
		p.StochasticDeviation = math.Max(p.StochasticDeviation, dev)
		if dev >= StochasticTolerance {
			p.Stochastic = false
		}
	}

	p.DoublyStochastic = p.Stochastic
	for _, s := range p.ColumnSums {
		if math.Abs(s-1) >= StochasticTolerance {
			p.DoublyStochastic = false
		}
	}

	p.Communication = Reachability(matrix)
	p.Irreducible = true
	for _, row := range p.Communication {
		for _, ok := range row {
			p.Irreducible = p.Irreducible && ok
		}
	}

	p.Periods = Periods(matrix)
	p.Aperiodic = true
	for _, d := range p.Periods {
		if d > 1 {
			p.Aperiodic = false
		}
	}
	p.Ergodic = p.Irreducible && p.Aperiodic

	for i := 0; i < n; i++ {
		if isAbsorbing(matrix, i) {
			p.AbsorbingStates = append(p.AbsorbingStates, states[i])
		}
	}
	p.HasAbsorbingStates = len(p.AbsorbingStates) > 0

	return p, nil
}

// Reachability returns the reflexive-transitive closure of the support
// graph of a square matrix (Warshall).
func Reachability(matrix [][]float64) [][]bool {
	n := len(matrix)
	reach := make([][]bool, n)
	for i := range reach {
		reach[i] = make([]bool, n)
		for j := range reach[i] {
			reach[i][j] = i == j || matrix[i][j] > SupportTolerance
		}
	}

	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !reach[i][k] {
				continue
			}
			for j := 0; j < n; j++ {
				if reach[k][j] {
					reach[i][j] = true
				}
			}
		}
	}
	return reach
}

// Periods applies the self-loop / two-cycle period heuristic to each state.
func Periods(matrix [][]float64) []int {
	n := len(matrix)
	periods := make([]int, n)
	for i := 0; i < n; i++ {
		d := 0
		if matrix[i][i] > SupportTolerance {
			d = gcd(d, 1)
		}
		for j := 0; j < n; j++ {
			if i != j && matrix[i][j] > SupportTolerance && matrix[j][i] > SupportTolerance {
				d = gcd(d, 2)
			}
		}
		periods[i] = d
	}
	return periods
}
