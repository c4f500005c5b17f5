package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCalculation(t *testing.T) {
	m := New()

	m.ObserveCalculation(50*time.Millisecond, 3, nil)
	m.ObserveCalculation(0, 0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalculationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalculationsTotal.WithLabelValues("failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.StoresCalculated))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.JobsInFlight.Set(2)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "storepulse_jobs_in_flight 2")
}

func TestIsolatedRegistries(t *testing.T) {
	a := New()
	b := New()
	a.StoresCalculated.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.StoresCalculated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.StoresCalculated))
}
