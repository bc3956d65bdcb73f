package linalg

import (
	"fmt"
)

// Property names used as keys of MatrixProperties.Errors.
const (
	PropDeterminant = "determinant"
	PropTrace       = "trace"
	PropRank        = "rank"
	PropNorms       = "norms"
	PropCondition   = "condition_number"
	PropEigenvalues = "eigenvalues"
	PropSVD         = "svd"
	PropPowers      = "powers"
)

// Norms groups the reported matrix norms. Spectral is the modulus of the
// dominant approximate eigenvalue, not the operator 2-norm, and is nil when
// the eigenvalue approximation failed.
type Norms struct {
	Frobenius float64  `json:"frobenius"`
	Spectral  *float64 `json:"spectral"`
	Infinity  float64  `json:"infinity"`
	One       float64  `json:"one"`
}

// Powers holds the matrix raised to the exponents used for multi-step
// migration forecasts.
type Powers struct {
	T2  [][]float64 `json:"T2"`
	T3  [][]float64 `json:"T3"`
	T5  [][]float64 `json:"T5"`
	T10 [][]float64 `json:"T10"`
}

// MatrixProperties is the aggregate diagnostic report. Every field is
// computed independently: a failing property is left nil and its error
// message is recorded under its name in Errors.
type MatrixProperties struct {
	Determinant *float64          `json:"determinant"`
	Trace       *float64          `json:"trace"`
	Rank        *int              `json:"rank"`
	Norms       *Norms            `json:"norms"`
	Condition   *Condition        `json:"condition_number"`
	Eigenvalues *EigenResult      `json:"eigenvalues"`
	SVD         *SVDResult        `json:"svd"`
	Powers      *Powers           `json:"powers"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// Failed reports whether the named property degraded to an error marker.
func (p *MatrixProperties) Failed(name string) bool {
	_, ok := p.Errors[name]
	return ok
}

// Properties builds the aggregate report for m. It never fails as a whole.
func Properties(m [][]float64) *MatrixProperties {
	p := &MatrixProperties{}

	p.capture(PropDeterminant, func() error {
		det, err := Determinant(m)
		if err != nil {
			return err
		}
		p.Determinant = &det
		return nil
	})

	p.capture(PropTrace, func() error {
		tr, err := Trace(m)
		if err != nil {
			return err
		}
		p.Trace = &tr
		return nil
	})

	p.capture(PropEigenvalues, func() error {
		eig, err := Eigenvalues(m)
		if err != nil {
			return err
		}
		p.Eigenvalues = eig
		return nil
	})

	p.capture(PropRank, func() error {
		r, err := Rank(m)
		if err != nil {
			return err
		}
		p.Rank = &r
		return nil
	})

	p.capture(PropNorms, func() error {
		if _, _, err := Shape(m); err != nil {
			return err
		}
		norms := &Norms{
			Frobenius: FrobeniusNorm(m),
			Infinity:  InfinityNorm(m),
			One:       OneNorm(m),
		}
		if p.Eigenvalues != nil && len(p.Eigenvalues.Moduli) > 0 {
			spectral := p.Eigenvalues.Moduli[0]
			norms.Spectral = &spectral
		}
		p.Norms = norms
		return nil
	})

	p.capture(PropCondition, func() error {
		c, err := ConditionNumber(m)
		if err != nil {
			return err
		}
		p.Condition = &c
		return nil
	})

	p.capture(PropSVD, func() error {
		svd, err := SingularValues(m)
		if err != nil {
			return err
		}
		p.SVD = svd
		return nil
	})

	p.capture(PropPowers, func() error {
		powers := &Powers{}
		for _, target := range []struct {
			k   int
			dst *[][]float64
		}{
			{2, &powers.T2}, {3, &powers.T3}, {5, &powers.T5}, {10, &powers.T10},
		} {
			pm, err := Power(m, target.k)
			if err != nil {
				return err
			}
			*target.dst = pm
		}
		p.Powers = powers
		return nil
	})

	return p
}

// capture runs one property computation, turning an error or a panic into
// an error marker for that property only.
func (p *MatrixProperties) capture(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			p.markError(name, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := fn(); err != nil {
		p.markError(name, err)
	}
}

func (p *MatrixProperties) markError(name string, err error) {
	if p.Errors == nil {
		p.Errors = make(map[string]string)
	}
	p.Errors[name] = err.Error()
}
