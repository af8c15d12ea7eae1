// Package metrics exposes gateway counters in Prometheus format. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rfid_gateway"

type Metrics struct {
	registry *prometheus.Registry

	ReadsTotal        *prometheus.CounterVec
	ReadDuration      *prometheus.HistogramVec
	RouterErrors      *prometheus.CounterVec
	CommandsPublished *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ReadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reads",
				Name:      "total",
				Help:      "Tag reads processed, by topic kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		ReadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "reads",
				Name:      "duration_seconds",
				Help:      "Time to resolve a tag read",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),

		RouterErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "router",
				Name:      "errors_total",
				Help:      "Messages answered on the error topic, by error code",
			},
			[]string{"code"},
		),

		CommandsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "commands",
				Name:      "published_total",
				Help:      "Commands published to readers",
			},
			[]string{"command"},
		),
	}

	m.registry.MustRegister(
		m.ReadsTotal,
		m.ReadDuration,
		m.RouterErrors,
		m.CommandsPublished,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRead(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ReadsTotal.WithLabelValues(kind, outcome).Inc()
	m.ReadDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *Metrics) RecordRouterError(code string) {
	if m == nil {
		return
	}
	m.RouterErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) RecordCommand(command string) {
	if m == nil {
		return
	}
	m.CommandsPublished.WithLabelValues(command).Inc()
}
