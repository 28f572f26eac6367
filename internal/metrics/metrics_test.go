package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New("studio")

	m.ObserveLedger("debit", "ok")
	m.ObserveLedger("debit", "ok")
	m.ObserveLedger("debit", "insufficient")
	m.ObserveCredits("debit", -3)
	m.ObserveImage("generate", "error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LedgerOperations.WithLabelValues("debit", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerOperations.WithLabelValues("debit", "insufficient")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CreditsMoved.WithLabelValues("debit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImageGenerations.WithLabelValues("generate", "error")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "studio_ledger_operations_total")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLedger("grant", "ok")
		m.ObserveCredits("grant", 5)
		m.ObserveImage("edit", "ok")
	})
}
