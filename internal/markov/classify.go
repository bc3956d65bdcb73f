package markov

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// AbsorbingState is a state the chain never leaves.
type AbsorbingState struct {
	Index                 int     `json:"index"`
	State                 string  `json:"state"`
	AbsorptionProbability float64 `json:"absorption_probability"`
}

// TransientState can reach an absorbing state.
//
// MeanAbsorptionTime is the row sum of |I-Q| and only a rough proxy.
// ExpectedSteps is the exact ((I-Q)⁻¹·1)[i], omitted when I-Q is singular.
type TransientState struct {
	Index              int      `json:"index"`
	State              string   `json:"state"`
	MeanAbsorptionTime float64  `json:"mean_absorption_time"`
	ExpectedSteps      *float64 `json:"expected_steps,omitempty"`
}

// RecurrentState cannot reach any absorbing state.
type RecurrentState struct {
	Index int    `json:"index"`
	State string `json:"state"`
}

// Classification partitions the states into disjoint groups.
type Classification struct {
	Absorbing []AbsorbingState `json:"absorbing"`
	Transient []TransientState `json:"transient"`
	Recurrent []RecurrentState `json:"recurrent"`
}

// ClassifyStates splits a labelled chain into absorbing, transient and
// recurrent states and estimates the time to absorption of transient ones.
func ClassifyStates(matrix [][]float64, states []string) (*Classification, error) {
	n, err := ValidateChain(matrix, states)
	if err != nil {
		return nil, err
	}

	c := &Classification{
		Absorbing: []AbsorbingState{},
		Transient: []TransientState{},
		Recurrent: []RecurrentState{},
	}

	absorbing := make([]bool, n)
	for i := 0; i < n; i++ {
		if isAbsorbing(matrix, i) {
			absorbing[i] = true
			c.Absorbing = append(c.Absorbing, AbsorbingState{
				Index:                 i,
				State:                 states[i],
				AbsorptionProbability: matrix[i][i],
			})
		}
	}

	for i := 0; i < n; i++ {
		if absorbing[i] {
			continue
		}
		if reachesAny(matrix, i, absorbing) {
			c.Transient = append(c.Transient, TransientState{Index: i, State: states[i]})
		} else {
			c.Recurrent = append(c.Recurrent, RecurrentState{Index: i, State: states[i]})
		}
	}

	if len(c.Absorbing) > 0 && len(c.Transient) > 0 {
		c.absorptionTimes(matrix)
	}
	return c, nil
}

// reachesAny runs a breadth-first search over the support graph from start.
func reachesAny(matrix [][]float64, start int, targets []bool) bool {
	visited := make([]bool, len(matrix))
	visited[start] = true
	queue := []int{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if targets[cur] {
			return true
		}
		for j, p := range matrix[cur] {
			if p > SupportTolerance && !visited[j] {
				visited[j] = true
				queue = append(queue, j)
			}
		}
	}
	return false
}

func (c *Classification) absorptionTimes(matrix [][]float64) {
	k := len(c.Transient)
	fundamental := mat.NewDense(k, k, nil)
	for a, ta := range c.Transient {
		var proxy float64
		for b, tb := range c.Transient {
			v := -matrix[ta.Index][tb.Index]
			if a == b {
				v += 1
			}
			fundamental.Set(a, b, v)
			proxy += math.Abs(v)
		}
		c.Transient[a].MeanAbsorptionTime = proxy
	}

	ones := mat.NewVecDense(k, nil)
	for i := 0; i < k; i++ {
		ones.SetVec(i, 1)
	}
	var steps mat.VecDense
	if err := steps.SolveVec(fundamental, ones); err != nil {
		return
	}
	for a := range c.Transient {
		v := steps.AtVec(a)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		c.Transient[a].ExpectedSteps = &v
	}
}

// StateNames returns the labels of a group in index order.
func (c *Classification) StateNames() (absorbing, transient, recurrent []string) {
	for _, s := range c.Absorbing {
		absorbing = append(absorbing, s.State)
	}
	for _, s := range c.Transient {
		transient = append(transient, s.State)
	}
	for _, s := range c.Recurrent {
		recurrent = append(recurrent, s.State)
	}
	return absorbing, transient, recurrent
}
