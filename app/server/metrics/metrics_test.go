package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http/httptest"
	"testing"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Login(LoginSuccess)
	m.Login(LoginSuccess)
	m.Login(LoginFailed)
	m.TokenRejected("expired")
	m.CacheLookup(CacheHit)
	m.CacheLookup(CacheMiss)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.LoginsTotal.WithLabelValues(LoginSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginsTotal.WithLabelValues(LoginFailed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TokenRejectionsTotal.WithLabelValues("expired")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues(CacheHit)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues(CacheError)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Login(LoginSuccess)
		m.TokenRejected("malformed")
		m.CacheLookup(CacheHit)
	})
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Login(LoginFailed)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `admin_logins_total{outcome="failed"} 1`)
}
