package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides a centralized interface for collecting application metrics.
//
// The metrics system is built on Prometheus and tracks:
//   - Chat turns handled and their outcome
//   - LLM request performance, token usage, and failover
//   - Tool execution patterns and latencies
//   - Storage operation latency by store and operation
//   - Recurrence materialiser tick outcomes
//
// Usage:
//
//	metrics := observability.NewMetrics()
//	metrics.ChatTurnHandled("ok")
//	defer metrics.LLMRequestDuration("anthropic", "claude-3-opus").Observe(time.Since(start).Seconds())
type Metrics struct {
	// ChatTurnCounter counts chat turns by outcome (ok|llm_unavailable|error).
	ChatTurnCounter *prometheus.CounterVec

	// ChatTurnDuration measures end-to-end turn latency in seconds.
	ChatTurnDuration prometheus.Histogram

	// LLMRequestDuration measures LLM API call latency in seconds.
	// Labels: provider (anthropic|openai), model
	LLMRequestDuration *prometheus.HistogramVec

	// LLMRequestCounter counts LLM requests by provider, model, and status.
	// Labels: provider, model, status (success|error)
	LLMRequestCounter *prometheus.CounterVec

	// LLMTokensUsed tracks token consumption.
	// Labels: provider, model, type (prompt|completion)
	LLMTokensUsed *prometheus.CounterVec

	// LLMFailoverCounter counts failovers from a primary to a backup provider.
	// Labels: from_provider, to_provider
	LLMFailoverCounter *prometheus.CounterVec

	// ToolExecutionCounter counts tool invocations.
	// Labels: tool_name, status (success|error)
	ToolExecutionCounter *prometheus.CounterVec

	// ToolExecutionDuration measures tool execution time in seconds.
	// Labels: tool_name
	ToolExecutionDuration *prometheus.HistogramVec

	// StorageQueryDuration measures store operation latency in seconds.
	// Labels: store (tasks|conversation), operation
	StorageQueryDuration *prometheus.HistogramVec

	// StorageQueryCounter counts store operations.
	// Labels: store, operation, status (success|error)
	StorageQueryCounter *prometheus.CounterVec

	// RecurrenceTickCounter counts materialised recurrence occurrences by outcome.
	// Labels: status (success|error)
	RecurrenceTickCounter *prometheus.CounterVec

	// ErrorCounter tracks errors by component and error kind.
	// Labels: component, error_kind
	ErrorCounter *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
// This should be called once at application startup.
func NewMetrics() *Metrics {
	return &Metrics{
		ChatTurnCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoagent_chat_turns_total",
				Help: "Total number of chat turns handled by outcome",
			},
			[]string{"outcome"},
		),

		ChatTurnDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "todoagent_chat_turn_duration_seconds",
				Help:    "End-to-end duration of a chat turn in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),

		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todoagent_llm_request_duration_seconds",
				Help:    "Duration of LLM API requests in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),

		LLMRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoagent_llm_requests_total",
				Help: "Total number of LLM requests by provider, model, and status",
			},
			[]string{"provider", "model", "status"},
		),

		LLMTokensUsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoagent_llm_tokens_total",
				Help: "Total number of tokens used by provider, model, and type",
			},
			[]string{"provider", "model", "type"},
		),

		LLMFailoverCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoagent_llm_failovers_total",
				Help: "Total number of LLM provider failovers",
			},
			[]string{"from_provider", "to_provider"},
		),

		ToolExecutionCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoagent_tool_executions_total",
				Help: "Total number of tool executions by tool name and status",
			},
			[]string{"tool_name", "status"},
		),

		ToolExecutionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todoagent_tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"tool_name"},
		),

		StorageQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todoagent_storage_query_duration_seconds",
				Help:    "Duration of store operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"store", "operation"},
		),

		StorageQueryCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoagent_storage_queries_total",
				Help: "Total number of store operations by store, operation, and status",
			},
			[]string{"store", "operation", "status"},
		),

		RecurrenceTickCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoagent_recurrence_materialised_total",
				Help: "Total number of recurrence occurrences materialised by outcome",
			},
			[]string{"status"},
		),

		ErrorCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoagent_errors_total",
				Help: "Total number of errors by component and error kind",
			},
			[]string{"component", "error_kind"},
		),
	}
}

// ChatTurnHandled records a completed chat turn.
func (m *Metrics) ChatTurnHandled(outcome string, durationSeconds float64) {
	m.ChatTurnCounter.WithLabelValues(outcome).Inc()
	m.ChatTurnDuration.Observe(durationSeconds)
}

// RecordLLMRequest records metrics for an LLM API request.
func (m *Metrics) RecordLLMRequest(provider, model, status string, durationSeconds float64, promptTokens, completionTokens int) {
	m.LLMRequestCounter.WithLabelValues(provider, model, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider, model).Observe(durationSeconds)
	if promptTokens > 0 {
		m.LLMTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.LLMTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
}

// RecordLLMFailover records a failover from one provider to another.
func (m *Metrics) RecordLLMFailover(fromProvider, toProvider string) {
	m.LLMFailoverCounter.WithLabelValues(fromProvider, toProvider).Inc()
}

// RecordToolExecution records metrics for a tool execution.
func (m *Metrics) RecordToolExecution(toolName, status string, durationSeconds float64) {
	m.ToolExecutionCounter.WithLabelValues(toolName, status).Inc()
	m.ToolExecutionDuration.WithLabelValues(toolName).Observe(durationSeconds)
}

// RecordStorageQuery records metrics for a store operation.
func (m *Metrics) RecordStorageQuery(store, operation, status string, durationSeconds float64) {
	m.StorageQueryCounter.WithLabelValues(store, operation, status).Inc()
	m.StorageQueryDuration.WithLabelValues(store, operation).Observe(durationSeconds)
}

// RecordRecurrenceTick records the outcome of materialising one recurrence occurrence.
func (m *Metrics) RecordRecurrenceTick(status string) {
	m.RecurrenceTickCounter.WithLabelValues(status).Inc()
}

// RecordError increments the error counter for a given component and error kind.
func (m *Metrics) RecordError(component, errorKind string) {
	m.ErrorCounter.WithLabelValues(component, errorKind).Inc()
}
