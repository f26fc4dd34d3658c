package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsAssembledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_assembled_total",
		Help: "Total number of report payloads assembled",
	}, []string{"action"})

	ReportsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_failed_total",
		Help: "Total number of report requests that failed outright",
	}, []string{"reason"})

	MetricFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_metric_fallbacks_total",
		Help: "Total number of metrics degraded to their zero value",
	}, []string{"source", "reason"})

	QueryTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "report_query_timeouts_total",
		Help: "Total number of aggregate queries that hit the per-query timeout",
	})

	DocumentsExportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "report_documents_exported_total",
		Help: "Total number of printable documents rendered",
	})

	CapabilityDetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capability_detections_total",
		Help: "Total number of schema capability detections",
	}, []string{"outcome"})

	DashboardCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_dashboard_cache_total",
		Help: "Dashboard payload cache lookups",
	}, []string{"outcome"})

	AssemblyLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_assembly_latency_seconds",
		Help:    "Latency of full report assembly",
		Buckets: prometheus.DefBuckets,
	})

	AggregateQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_aggregate_query_latency_seconds",
		Help:    "Latency of individual aggregate queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
