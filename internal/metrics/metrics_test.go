package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	// given
	m := New()

	// when
	m.GuardDecision("granted")
	m.GuardDecision("denied")
	m.GuardDecision("denied")
	m.CollectionLoaded("success", 20*time.Millisecond)
	m.RowDelete("deleted")
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	// then
	assert.Equal(t, 1.0, testutil.ToFloat64(m.guardDecisions.WithLabelValues("granted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.guardDecisions.WithLabelValues("denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deletes.WithLabelValues("deleted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeSessions))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.GuardDecision("granted")
		m.CollectionLoaded("failure", time.Second)
		m.RowDelete("failed")
		m.SessionOpened()
		m.SessionClosed()
	})
}

func TestMetrics_Handler(t *testing.T) {
	// given
	m := New()
	m.RowDelete("deleted")
	rr := httptest.NewRecorder()

	// when
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `admin_catalog_row_deletes_total{outcome="deleted"} 1`)
}
