package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOperation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("estimate", time.Now(), nil)
	m.ObserveOperation("estimate", time.Now(), nil)
	m.ObserveOperation("estimate", time.Now(), errors.New("bad"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("estimate", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("estimate", OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration))
}

func TestCountersAndNilSafety(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncrementNonConverged()
	m.ObserveRequest("/matrix", http.StatusOK)
	m.ObserveStates(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StationaryNonConverged))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/matrix", "200")))

	var none *Metrics
	assert.NotPanics(t, func() {
		none.ObserveOperation("x", time.Now(), nil)
		none.IncrementNonConverged()
		none.ObserveRequest("/", 200)
		none.ObserveStates(1)
	})
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
