package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics はアプリ専用のレジストリとコレクタ。
// テストごとに作り直せるよう、グローバルには登録しない。
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	cartIntents  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms〜約5s
		}, []string{"method", "path"}),
		cartIntents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_intents_total",
			Help: "Cart intents applied, by resulting action.",
		}, []string{"action"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.cartIntents,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// path はルートのパターン（/api/items/:id）を渡すこと。実URLだとラベルが爆発する。
func (m *Metrics) ObserveHTTP(method, path, status string, seconds float64) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(seconds)
}

func (m *Metrics) IncInFlight() { m.httpInFlight.Inc() }

func (m *Metrics) DecInFlight() { m.httpInFlight.Dec() }

// usecase.CartIntentRecorder
func (m *Metrics) ObserveCartIntent(action string) {
	m.cartIntents.WithLabelValues(action).Inc()
}
