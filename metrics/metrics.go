// Package metrics provides Prometheus metrics for the 4Devs MCP server.
// It tracks tool calls, provider latency, city resolution outcomes and
// HTTP transport activity.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "fourdevs_mcp"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// ToolErrors counts failed tool calls by error kind
	ToolErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "tool_errors_total",
		Help:      "Failed tool calls by tool and error kind",
	}, []string{"tool", "kind"})

	// ProviderLatency measures 4Devs call latency by action
	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "4Devs provider call latency by action",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})

	// ProviderRequestsTotal counts provider calls by action and HTTP status
	ProviderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "provider_requests_total",
		Help:      "Total 4Devs provider requests by action and status code",
	}, []string{"action", "status"})

	// ProviderErrors counts provider call failures by error kind
	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "provider_errors_total",
		Help:      "4Devs provider errors by action and error kind",
	}, []string{"action", "kind"})

	// CityResolutions counts city name resolutions by outcome
	CityResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "city_resolutions_total",
		Help:      "City name resolutions by outcome",
	}, []string{"outcome"})

	// RateLimitRejections counts requests rejected due to rate limiting
	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Requests rejected due to rate limiting",
	})

	// AuthFailures counts authentication failures
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_failures_total",
		Help:      "Authentication failure count by reason",
	}, []string{"reason"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// HTTPRequestsTotal counts HTTP transport requests
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method and status",
	}, []string{"method", "status"})

	// HTTPRequestDuration measures HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency distribution",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// RecordRequest records a completed request with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	RequestsTotal.WithLabelValues(tool, status).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordToolError records the error kind of a failed tool call
func RecordToolError(tool, kind string) {
	ToolErrors.WithLabelValues(tool, kind).Inc()
}

// RecordAPICall records a provider call. statusCode is 0 when no reply was
// received; errorKind is empty for calls the gateway accepted.
func RecordAPICall(action string, duration float64, statusCode int, errorKind string) {
	status := "none"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	ProviderRequestsTotal.WithLabelValues(action, status).Inc()
	ProviderLatency.WithLabelValues(action).Observe(duration)
	if errorKind != "" {
		ProviderErrors.WithLabelValues(action, errorKind).Inc()
	}
}

// RecordResolution records the outcome of one city resolution
func RecordResolution(outcome string) {
	CityResolutions.WithLabelValues(outcome).Inc()
}
