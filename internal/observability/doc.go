// Package observability provides metrics and structured logging for the
// chat agent.
//
// # Overview
//
// The package covers two pillars:
//
//  1. Metrics - quantitative measurements using Prometheus
//  2. Logging - structured logs with sensitive data redaction
//
// Distributed tracing is intentionally not part of this package: the core
// is a single-process, single-store deployment, and the Prometheus counters
// and histograms here already cover its observability surface.
//
// # Metrics
//
// Metrics tracks chat turns, LLM requests (including provider failover),
// tool executions, store operations, and recurrence materialisation:
//
//	metrics := observability.NewMetrics()
//
//	start := time.Now()
//	resp, err := provider.Complete(ctx, req)
//	status := "success"
//	if err != nil {
//	    status = "error"
//	}
//	metrics.RecordLLMRequest(provider.Name(), req.Model, status, time.Since(start).Seconds(), resp.InputTokens, resp.OutputTokens)
//
// # Logging
//
// Logger wraps log/slog with level/format configuration and redaction of
// common secret shapes (API keys, bearer tokens, JWTs) before they reach
// any sink:
//
//	logger := observability.NewLogger(observability.LogConfig{
//	    Level:  cfg.Logging.Level,
//	    Format: cfg.Logging.Format,
//	})
//	ctx = observability.AddUserID(ctx, userID)
//	ctx = observability.AddConversationID(ctx, conversationID)
//	logger.Info(ctx, "handled chat turn", "performed_action", resp.PerformedAction)
//
// # Usage in main
//
//	logger := observability.NewLogger(observability.LogConfig{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
//	metrics := observability.NewMetrics()
//	http.Handle("/metrics", promhttp.Handler())
package observability
