// Package analysis is the entry point to the credit-migration engine. It
// validates structural input, tags each call with an analysis ID, logs and
// records metrics, and composes the markov, linalg and risk packages.
package analysis

import (
	"context"
	"fmt"
	"time"

	"gomarkov/domain/core"
	"gomarkov/internal"
	"gomarkov/internal/linalg"
	"gomarkov/internal/markov"
	"gomarkov/internal/metrics"
	"gomarkov/internal/risk"
)

// Operation names used for logging and metrics.
const (
	OpEstimate         = "estimate"
	OpStationary       = "stationary"
	OpLosses           = "losses"
	OpStress           = "stress"
	OpMatrixProperties = "matrix_properties"
	OpMarkovProperties = "markov_properties"
	OpClassify         = "classify"
	OpAnalyze          = "analyze"
)

// DefaultMaxStates bounds chain size for the full analysis and the
// algebraic report.
const DefaultMaxStates = 10

// Options are the engine-wide numerical defaults.
type Options struct {
	Tolerance     float64
	MaxIterations int
	// MaxStates limits Analyze and MatrixProperties; 0 disables the check.
	MaxStates int
	Stress    risk.StressParams
}

// DefaultOptions mirrors the package defaults of markov and risk.
func DefaultOptions() Options {
	return Options{
		Tolerance:     markov.DefaultTolerance,
		MaxIterations: markov.DefaultMaxIterations,
		MaxStates:     DefaultMaxStates,
		Stress:        risk.DefaultStressParams(),
	}
}

// Engine provides unified access to all chain computations. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	opts    Options
	logger  *internal.Logger
	metrics *metrics.Metrics
}

// NewEngine creates an engine. A nil logger falls back to
// internal.DefaultLogger; nil metrics disables instrumentation.
func NewEngine(opts Options, logger *internal.Logger, m *metrics.Metrics) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{opts: opts, logger: logger, metrics: m}
}

// Options returns the defaults the engine was built with.
func (e *Engine) Options() Options {
	return e.opts
}

// StationaryParams overrides the solver defaults for one call. Zero values
// keep the engine defaults.
type StationaryParams struct {
	Tolerance     float64
	MaxIterations int
}

// StressFactors overrides the stress factors for one call. Nil keeps the
// engine default.
type StressFactors struct {
	Delinquent    *float64
	Uncollectible *float64
}

type analysisIDKey struct{}

// WithAnalysisID makes engine calls made with ctx reuse id instead of
// generating one, so a request ID flows into logs and results.
func WithAnalysisID(ctx context.Context, id core.AnalysisID) context.Context {
	return context.WithValue(ctx, analysisIDKey{}, id)
}

// AnalysisIDFrom returns the ID stored by WithAnalysisID, or a new one.
func AnalysisIDFrom(ctx context.Context) core.AnalysisID {
	if id, ok := ctx.Value(analysisIDKey{}).(core.AnalysisID); ok && id != "" {
		return id
	}
	return core.NewAnalysisID()
}

// call tracks one engine operation for logging and metrics.
type call struct {
	id      core.AnalysisID
	op      string
	start   time.Time
	log     *internal.Logger
	metrics *metrics.Metrics
}

// begin checks the context and binds a logger to the call's analysis ID.
func (e *Engine) begin(ctx context.Context, op string) (*call, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id := AnalysisIDFrom(ctx)
	c := &call{
		id:      id,
		op:      op,
		start:   time.Now(),
		log:     e.logger.With("analysis_id", id.String(), "operation", op),
		metrics: e.metrics,
	}
	c.log.Trace("starting")
	return c, nil
}

// finish records duration and outcome.
func (c *call) finish(err error) {
	c.metrics.ObserveOperation(c.op, c.start, err)
	if err != nil {
		c.log.Warn("failed: %v", err)
		return
	}
	c.log.Debug("done in %s", time.Since(c.start))
}

// EstimateTransition builds the transition matrix from observations.
func (e *Engine) EstimateTransition(ctx context.Context, observations []markov.Observation) (est *markov.TransitionEstimate, err error) {
	c, err := e.begin(ctx, OpEstimate)
	if err != nil {
		return nil, err
	}
	defer func() { c.finish(err) }()

	est, err = markov.EstimateTransitions(observations)
	if err != nil {
		return nil, err
	}
	e.metrics.ObserveStates(len(est.States))
	c.log.Info("estimated %d states from %d observations", len(est.States), est.Stats.TotalTransitions)
	return est, nil
}

// StationaryDistribution runs the power-iteration solver on a square,
// finite matrix. Non-convergence is reported on the result, not as an error.
func (e *Engine) StationaryDistribution(ctx context.Context, matrix [][]float64, params StationaryParams) (res *markov.StationaryResult, err error) {
	c, err := e.begin(ctx, OpStationary)
	if err != nil {
		return nil, err
	}
	defer func() { c.finish(err) }()

	if err = validateMatrix(matrix); err != nil {
		return nil, err
	}

	res, err = e.stationary(matrix, params)
	if err != nil {
		return nil, err
	}
	c.log.With("iterations", res.Iterations, "converged", res.Converged).Debug("stationary solved")
	return res, nil
}

func (e *Engine) stationary(matrix [][]float64, params StationaryParams) (*markov.StationaryResult, error) {
	res, err := markov.StationaryDistribution(matrix, e.stationaryOptions(params)...)
	if err != nil {
		return nil, err
	}
	if !res.Converged {
		e.metrics.IncrementNonConverged()
	}
	return res, nil
}

func (e *Engine) stationaryOptions(params StationaryParams) []markov.StationaryOption {
	return []markov.StationaryOption{
		markov.WithTolerance(e.opts.Tolerance),
		markov.WithMaxIterations(e.opts.MaxIterations),
		markov.WithTolerance(params.Tolerance),
		markov.WithMaxIterations(params.MaxIterations),
	}
}

// ExpectedLosses computes EL = EAD × PD × LGD per state.
func (e *Engine) ExpectedLosses(ctx context.Context, matrix [][]float64, states []string, ead, lgd map[string]float64) (rep *risk.LossReport, err error) {
	c, err := e.begin(ctx, OpLosses)
	if err != nil {
		return nil, err
	}
	defer func() { c.finish(err) }()

	if err = validateMatrix(matrix); err != nil {
		return nil, err
	}
	rep, err = risk.ExpectedLosses(matrix, states, ead, lgd)
	if err != nil {
		return nil, err
	}
	c.log.Info("total expected loss %.4f (default state %s)", rep.TotalLoss, rep.DefaultState)
	return rep, nil
}

// ApplyStress shocks the delinquent and uncollectible columns.
func (e *Engine) ApplyStress(ctx context.Context, matrix [][]float64, states []string, factors StressFactors) (res *risk.StressResult, err error) {
	c, err := e.begin(ctx, OpStress)
	if err != nil {
		return nil, err
	}
	defer func() { c.finish(err) }()

	if err = validateMatrix(matrix); err != nil {
		return nil, err
	}

	params := e.opts.Stress
	if factors.Delinquent != nil {
		params.Delinquent = *factors.Delinquent
	}
	if factors.Uncollectible != nil {
		params.Uncollectible = *factors.Uncollectible
	}

	res, err = risk.ApplyStress(matrix, states, params, e.stationaryOptions(StationaryParams{})...)
	if err != nil {
		return nil, err
	}
	c.log.Info("stress applied (delinquent=%s x%.2f, uncollectible=%s x%.2f), max shift %.6f",
		res.DelinquentState, params.Delinquent, res.UncollectibleState, params.Uncollectible, res.MaxShift)
	return res, nil
}

// MatrixProperties returns the algebraic report. Non-square matrices are
// accepted; properties that need a square input carry an error marker.
func (e *Engine) MatrixProperties(ctx context.Context, matrix [][]float64) (props *linalg.MatrixProperties, err error) {
	c, err := e.begin(ctx, OpMatrixProperties)
	if err != nil {
		return nil, err
	}
	defer func() { c.finish(err) }()

	rows, cols, err := linalg.Shape(matrix)
	if err != nil {
		return nil, err
	}
	if err = e.checkSize(max(rows, cols)); err != nil {
		return nil, err
	}
	if err = linalg.CheckFinite(matrix); err != nil {
		return nil, err
	}

	props = linalg.Properties(matrix)
	for name, msg := range props.Errors {
		c.log.Debug("property %s unavailable: %s", name, msg)
	}
	return props, nil
}

// MarkovProperties returns the structural report of a labelled chain.
func (e *Engine) MarkovProperties(ctx context.Context, matrix [][]float64, states []string) (props *markov.StructuralProperties, err error) {
	c, err := e.begin(ctx, OpMarkovProperties)
	if err != nil {
		return nil, err
	}
	defer func() { c.finish(err) }()

	if err = validateMatrix(matrix); err != nil {
		return nil, err
	}
	return markov.AnalyzeStructure(matrix, states)
}

// ClassifyStates splits states into absorbing, transient and recurrent.
func (e *Engine) ClassifyStates(ctx context.Context, matrix [][]float64, states []string) (_ *markov.Classification, err error) {
	c, err := e.begin(ctx, OpClassify)
	if err != nil {
		return nil, err
	}
	defer func() { c.finish(err) }()

	if err = validateMatrix(matrix); err != nil {
		return nil, err
	}
	return markov.ClassifyStates(matrix, states)
}

// checkSize rejects chains larger than Options.MaxStates.
func (e *Engine) checkSize(n int) error {
	if e.opts.MaxStates > 0 && n > e.opts.MaxStates {
		return core.NewInvalidInputError("states", fmt.Sprintf("%d states exceed the limit of %d", n, e.opts.MaxStates))
	}
	return nil
}

func validateMatrix(matrix [][]float64) error {
	if _, err := linalg.SquareSize(matrix); err != nil {
		return err
	}
	return linalg.CheckFinite(matrix)
}
