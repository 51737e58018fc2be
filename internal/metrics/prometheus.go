package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolCalls counts tool invocations by outcome kind.
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensio_tool_calls_total",
			Help: "Total number of tool calls",
		},
		[]string{"tool", "status"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sensio_tool_call_duration_seconds",
			Help:    "Tool call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// CacheRequests counts cache lookups per namespace, result is hit or miss.
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensio_cache_requests_total",
			Help: "Total number of cache lookups",
		},
		[]string{"namespace", "result"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensio_cache_errors_total",
			Help: "Total number of cache backend errors",
		},
		[]string{"namespace", "operation"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensio_upstream_requests_total",
			Help: "Total number of requests to the indoor data source",
		},
		[]string{"source", "status"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sensio_upstream_request_duration_seconds",
			Help:    "Indoor data source request duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	// RecordsFetched observes how many raw records each fetch returned.
	RecordsFetched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sensio_upstream_records",
			Help:    "Raw records returned per upstream fetch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	AccessDenied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sensio_access_denied_total",
			Help: "Total number of calls rejected by the device access check",
		},
	)
)
