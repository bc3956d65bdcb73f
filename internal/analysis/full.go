package analysis

import (
	"context"
	"fmt"
	"time"

	"gomarkov/domain/core"
	"gomarkov/internal/linalg"
	"gomarkov/internal/markov"
	"gomarkov/ports"
)

// Section names used as keys of FullAnalysis.Errors.
const (
	SectionStationary       = "stationary"
	SectionMatrixProperties = "matrix_properties"
	SectionMarkovProperties = "markov_properties"
	SectionClassification   = "classification"
)

// FullAnalysis bundles everything derived from one observation sample.
// Only the estimate is mandatory; any other section that fails is left nil
// and its error is recorded under its name.
type FullAnalysis struct {
	ID               core.AnalysisID              `json:"analysis_id"`
	CreatedAt        time.Time                    `json:"created_at"`
	Fingerprint      string                       `json:"fingerprint"`
	Estimate         *markov.TransitionEstimate   `json:"estimate"`
	Stationary       *markov.StationaryResult     `json:"stationary,omitempty"`
	MatrixProperties *linalg.MatrixProperties     `json:"matrix_properties,omitempty"`
	MarkovProperties *markov.StructuralProperties `json:"markov_properties,omitempty"`
	Classification   *markov.Classification       `json:"classification,omitempty"`
	Errors           map[string]string            `json:"errors,omitempty"`
}

// Analyze estimates the chain and derives every report from it.
func (e *Engine) Analyze(ctx context.Context, observations []markov.Observation) (full *FullAnalysis, err error) {
	c, err := e.begin(ctx, OpAnalyze)
	if err != nil {
		return nil, err
	}
	defer func() { c.finish(err) }()

	est, err := markov.EstimateTransitions(observations)
	if err != nil {
		return nil, err
	}
	e.metrics.ObserveStates(len(est.States))
	if err = e.checkSize(len(est.States)); err != nil {
		return nil, err
	}

	full = &FullAnalysis{
		ID:          c.id,
		CreatedAt:   time.Now().UTC(),
		Fingerprint: core.MatrixFingerprint(est.TransitionMatrix).Short(),
		Estimate:    est,
	}
	m, states := est.TransitionMatrix, est.States

	full.section(SectionStationary, func() (err error) {
		full.Stationary, err = e.stationary(m, StationaryParams{})
		return err
	})
	full.section(SectionMatrixProperties, func() error {
		full.MatrixProperties = linalg.Properties(m)
		return nil
	})
	full.section(SectionMarkovProperties, func() (err error) {
		full.MarkovProperties, err = markov.AnalyzeStructure(m, states)
		return err
	})
	full.section(SectionClassification, func() (err error) {
		full.Classification, err = markov.ClassifyStates(m, states)
		return err
	})

	c.log.Info("analysis %s: %d states, %d observations, %d failed sections",
		full.ID, len(states), est.Stats.TotalTransitions, len(full.Errors))
	return full, nil
}

// AnalyzeSource loads observations from src and analyses them.
func (e *Engine) AnalyzeSource(ctx context.Context, src ports.ObservationSource) (*FullAnalysis, error) {
	observations, err := src.LoadObservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading observations: %w", err)
	}
	return e.Analyze(ctx, observations)
}

func (f *FullAnalysis) section(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			f.fail(name, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := fn(); err != nil {
		f.fail(name, err)
	}
}

func (f *FullAnalysis) fail(name string, err error) {
	if f.Errors == nil {
		f.Errors = make(map[string]string)
	}
	f.Errors[name] = err.Error()
}
