package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

// 登录结果
const (
	LoginSuccess  = "success"
	LoginFailed   = "failed"
	LoginError    = "error"
	LoginRehashed = "rehashed"
)

// 缓存查询结果
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

type Metrics struct {
	LoginsTotal          *prometheus.CounterVec
	TokenRejectionsTotal *prometheus.CounterVec
	CacheLookupsTotal    *prometheus.CounterVec

	registry *prometheus.Registry
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_logins_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		TokenRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_token_rejections_total",
				Help: "Total number of rejected bearer tokens by reason",
			},
			[]string{"reason"},
		),
		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_cache_lookups_total",
				Help: "Total number of admin cache lookups by result",
			},
			[]string{"result"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.LoginsTotal,
		m.TokenRejectionsTotal,
		m.CacheLookupsTotal,
	)

	return m
}

// Login 可以在 nil 上调用
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TokenRejected(reason string) {
	if m == nil {
		return
	}
	m.TokenRejectionsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
