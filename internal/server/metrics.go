package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "treepick"

type metrics struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	uploadBytes prometheus.Histogram
	nodes       prometheus.Histogram
	exports     *prometheus.CounterVec
	throttled   prometheus.Counter
}

// newMetrics registers the server collectors on reg. Each server owns its
// registry so tests can build many servers.
func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "upload_bytes",
			Help:      "Size of uploaded documents",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 9),
		}),
		nodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "document_nodes",
			Help:      "Number of indexed paths per parsed document",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 9),
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "total",
			Help:      "Export requests by outcome",
		}, []string{"format", "outcome"}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "throttled_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
	reg.MustRegister(
		m.requests, m.latency, m.uploadBytes, m.nodes, m.exports, m.throttled,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
