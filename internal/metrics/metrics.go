package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for AnalysesTotal.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics provides observability for the analysis engine and the API.
type Metrics struct {
	AnalysesTotal          *prometheus.CounterVec
	OperationDuration      *prometheus.HistogramVec
	StationaryNonConverged prometheus.Counter
	ChainStates            prometheus.Histogram
	HTTPRequests           *prometheus.CounterVec
}

// New registers all metrics on reg. Passing a fresh registry per test keeps
// registrations independent.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomarkov_analyses_total",
			Help: "Engine operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gomarkov_operation_duration_seconds",
			Help:    "Duration of engine operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		StationaryNonConverged: factory.NewCounter(prometheus.CounterOpts{
			Name: "gomarkov_stationary_nonconverged_total",
			Help: "Stationary solves that fell back to normalization",
		}),
		ChainStates: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gomarkov_chain_states",
			Help:    "Number of states in analysed chains",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomarkov_http_requests_total",
			Help: "API requests by route and status",
		}, []string{"route", "status"}),
	}
}

// ObserveOperation records one engine call. Call with time.Now() at the
// start of the operation and the error it returned.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.AnalysesTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// IncrementNonConverged records a stationary solve that hit the iteration cap.
func (m *Metrics) IncrementNonConverged() {
	if m == nil {
		return
	}
	m.StationaryNonConverged.Inc()
}

// ObserveStates records the size of an analysed chain.
func (m *Metrics) ObserveStates(n int) {
	if m == nil {
		return
	}
	m.ChainStates.Observe(float64(n))
}

// ObserveRequest counts one API request.
func (m *Metrics) ObserveRequest(route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
