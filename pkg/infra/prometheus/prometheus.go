package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds, sized for model calls.
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	RequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "safechat_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "status"},
	)

	AssessmentsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "safechat_assessments_total",
			Help: "Safety assessments by pipeline stage, severity and verdict",
		},
		[]string{"stage", "severity", "blocked"},
	)

	RepliesTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "safechat_replies_total",
			Help: "Replies returned to children by source and whether they were filtered",
		},
		[]string{"source", "filtered"},
	)

	GenerationLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "safechat_generation_latency_ms",
			Help:    "Generation latency in milliseconds by answer source",
			Buckets: latencyBuckets,
		},
		[]string{"source"},
	)

	AuditEventsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "safechat_audit_events_total",
			Help: "Audit entries by outcome (written, failed, dropped, notified, deduplicated)",
		},
		[]string{"result"},
	)
)

type MetricsConfig struct {
	EnableLatency bool
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency: true,
	}
}

var Config = DefaultMetricsConfig()

func Initialize(cfg MetricsConfig) {
	Config = cfg
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

func Gatherer() prometheus.Gatherer {
	return registry
}
