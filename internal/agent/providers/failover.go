package providers

import (
	"context"

	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
	"github.com/rabiasohail098/todo-chat-agent/internal/observability"
)

// FailoverProvider composes a primary and a secondary Provider. On a
// KindLLMUnavailable failure from the primary it retries once against the
// secondary before surfacing the failure to the caller. Grounded on the
// teacher's FailoverOrchestrator, simplified to the single-hop fallback
// the chat agent's per-turn model actually needs.
type FailoverProvider struct {
	primary   Provider
	secondary Provider
	metrics   *observability.Metrics
}

// NewFailoverProvider builds a FailoverProvider. secondary may be nil, in
// which case it behaves exactly like primary.
func NewFailoverProvider(primary, secondary Provider) *FailoverProvider {
	return &FailoverProvider{primary: primary, secondary: secondary}
}

// SetMetrics attaches a Metrics recorder used to count failovers from the
// primary to the secondary. Left unset, failovers are not recorded.
func (f *FailoverProvider) SetMetrics(metrics *observability.Metrics) {
	f.metrics = metrics
}

// Name identifies the active pairing for logging and metrics.
func (f *FailoverProvider) Name() string {
	if f.secondary == nil {
		return f.primary.Name()
	}
	return f.primary.Name() + "+" + f.secondary.Name()
}

// Models returns the primary's model list; the secondary is only consulted
// on failover and is not expected to diverge meaningfully for this purpose.
func (f *FailoverProvider) Models() []Model {
	return f.primary.Models()
}

// Complete tries the primary first. If it fails with KindLLMUnavailable
// and a secondary is configured, it is tried once before the original
// failure (or the secondary's failure) is returned.
func (f *FailoverProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	resp, err := f.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}
	if f.secondary == nil || !apperrors.Is(err, apperrors.KindLLMUnavailable) {
		return CompletionResponse{}, err
	}

	if f.metrics != nil {
		f.metrics.RecordLLMFailover(f.primary.Name(), f.secondary.Name())
	}

	resp, secondaryErr := f.secondary.Complete(ctx, req)
	if secondaryErr != nil {
		return CompletionResponse{}, secondaryErr
	}
	return resp, nil
}
