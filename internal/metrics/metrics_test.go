package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Envolvente/internal/diag"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := m.reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if v, ok := labels[lp.GetName()]; ok && v != lp.GetValue() {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMiddleware(t *testing.T) {
	m := New()
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	r.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {})

	for _, p := range []string{"/projects/1", "/projects/2", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, counterValue(t, m, "envolvente_http_requests_total",
		map[string]string{"route": "/projects/{id}", "code": "404"}))
	assert.Equal(t, 1.0, counterValue(t, m, "envolvente_http_requests_total",
		map[string]string{"route": "/ok", "code": "200"}))
}

func TestObserverCountsWarnings(t *testing.T) {
	m := New()
	col := &diag.Collector{}
	obs := m.Observer(col)
	obs.Debugw("x")
	obs.Warnw("wall with unknown construction", "id", "w1")
	obs.Warnw("wall with unknown construction", "id", "w2")
	m.Evaluated("uvalues")

	assert.Len(t, col.Warnings(), 2)
	assert.Equal(t, 2.0, counterValue(t, m, "envolvente_warnings_total", nil))
	assert.Equal(t, 1.0, counterValue(t, m, "envolvente_evaluations_total", map[string]string{"kind": "uvalues"}))

	// nil wraps to a no-op observer
	m.Observer(nil).Warnw("x")
	assert.Equal(t, 3.0, counterValue(t, m, "envolvente_warnings_total", nil))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Evaluated("indicators")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `envolvente_evaluations_total{kind="indicators"} 1`)
}
