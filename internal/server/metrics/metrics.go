// Package metrics holds the Prometheus collectors of the tradeauth server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the custom collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	AuthOpsTotal        *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	LoginThrottledTotal prometheus.Counter
}

// New creates the collectors and registers them together with the standard
// Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		AuthOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeauth_auth_operations_total",
				Help: "Total number of auth service operations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeauth_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradeauth_http_request_duration_seconds",
				Help:    "HTTP request latency by route and method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		LoginThrottledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tradeauth_login_throttled_total",
				Help: "Total number of login attempts rejected by the rate limiter",
			},
		),
	}

	registry.MustRegister(m.AuthOpsTotal, m.HTTPRequestsTotal, m.HTTPRequestDuration, m.LoginThrottledTotal)
	return m
}

// RecordAuth counts one finished auth operation.
func (m *Metrics) RecordAuth(op, outcome string) {
	m.AuthOpsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordLoginThrottled() {
	m.LoginThrottledTotal.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
