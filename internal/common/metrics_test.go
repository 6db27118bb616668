package common

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Middleware(t *testing.T) {
	m := NewMetrics()

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/blogs/x", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	m.BlogEvent("created")

	out := httptest.NewRecorder()
	m.Handler().ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",status="404"} 1`)
	assert.Contains(t, string(body), `blog_events_total{event="created"} 1`)
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	m.BlogEvent("created")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
