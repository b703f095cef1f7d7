package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the paper search service.
// Metrics are organized by subsystem: tool calls, paper sources, and document
// extraction. All collectors are registered via promauto with the default
// Prometheus registry.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// ToolCallsTotal counts tool invocations, labeled by tool and outcome
	// ("ok", "empty", "error").
	ToolCallsTotal *prometheus.CounterVec

	// ToolCallDuration observes tool call duration in seconds, labeled by tool.
	ToolCallDuration *prometheus.HistogramVec

	// SourceRequestsTotal counts HTTP requests to paper sources, labeled by source and endpoint.
	SourceRequestsTotal *prometheus.CounterVec

	// SourceRequestsFailed counts failed HTTP requests to paper sources, labeled by source, endpoint, and error type.
	SourceRequestsFailed *prometheus.CounterVec

	// SourceRequestDuration observes HTTP request duration to paper sources in seconds.
	SourceRequestDuration *prometheus.HistogramVec

	// EntriesSkipped counts malformed feed entries dropped during a search, labeled by source.
	EntriesSkipped *prometheus.CounterVec

	// PapersReturned counts papers returned by searches, labeled by source.
	PapersReturned *prometheus.CounterVec

	// DocumentBytesFetched observes the size of fetched documents in bytes, labeled by source.
	DocumentBytesFetched *prometheus.HistogramVec

	// DocumentReadFailures counts failed document reads, labeled by source and reason
	// ("not_found", "fetch", "decode").
	DocumentReadFailures *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ToolCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls by tool and outcome",
		}, []string{"tool", "outcome"}),
		ToolCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of tool calls in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"tool"}),

		SourceRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Total number of HTTP requests to paper sources",
		}, []string{"source", "endpoint"}),
		SourceRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_failed_total",
			Help:      "Total number of failed HTTP requests to paper sources",
		}, []string{"source", "endpoint", "error_type"}),
		SourceRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Duration of HTTP requests to paper sources in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "endpoint"}),

		EntriesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_skipped_total",
			Help:      "Total number of malformed feed entries skipped",
		}, []string{"source"}),
		PapersReturned: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_returned_total",
			Help:      "Total number of papers returned by searches",
		}, []string{"source"}),

		DocumentBytesFetched: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_bytes_fetched",
			Help:      "Size of fetched documents in bytes",
			Buckets:   prometheus.ExponentialBuckets(64*1024, 2, 12),
		}, []string{"source"}),
		DocumentReadFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_read_failures_total",
			Help:      "Total number of failed document reads by reason",
		}, []string{"source", "reason"}),
	}
}

// RecordToolCall records a finished tool call.
func (m *Metrics) RecordToolCall(tool, outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
	m.ToolCallDuration.WithLabelValues(tool).Observe(durationSeconds)
}

// RecordSourceRequest records a request to a paper source.
func (m *Metrics) RecordSourceRequest(source, endpoint string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.SourceRequestsTotal.WithLabelValues(source, endpoint).Inc()
	m.SourceRequestDuration.WithLabelValues(source, endpoint).Observe(durationSeconds)
}

// RecordSourceRequestFailed records a failed request to a paper source.
func (m *Metrics) RecordSourceRequestFailed(source, endpoint, errorType string) {
	if m == nil {
		return
	}
	m.SourceRequestsFailed.WithLabelValues(source, endpoint, errorType).Inc()
}

// RecordEntrySkipped records a malformed entry dropped from a search batch.
func (m *Metrics) RecordEntrySkipped(source string) {
	if m == nil {
		return
	}
	m.EntriesSkipped.WithLabelValues(source).Inc()
}

// RecordPapersReturned records the number of papers a search produced.
func (m *Metrics) RecordPapersReturned(source string, count int) {
	if m == nil {
		return
	}
	m.PapersReturned.WithLabelValues(source).Add(float64(count))
}

// RecordDocumentFetched records the size of a fetched document.
func (m *Metrics) RecordDocumentFetched(source string, sizeBytes int64) {
	if m == nil {
		return
	}
	m.DocumentBytesFetched.WithLabelValues(source).Observe(float64(sizeBytes))
}

// RecordDocumentReadFailed records a failed document read.
func (m *Metrics) RecordDocumentReadFailed(source, reason string) {
	if m == nil {
		return
	}
	m.DocumentReadFailures.WithLabelValues(source, reason).Inc()
}
