package providers

import (
	"context"
	"time"

	"github.com/rabiasohail098/todo-chat-agent/internal/backoff"
)

// retry runs op until it succeeds, isRetryable(err) returns false, or
// maxAttempts is exhausted, sleeping between attempts per an exponential
// backoff-with-jitter policy, following the same shape as
// BaseProvider.Retry helper, but delegates the delay calculation to the
// shared backoff package rather than a bespoke linear formula.
func retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, isRetryable func(error) bool, op func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	policy := backoff.BackoffPolicy{
		InitialMs: float64(baseDelay.Milliseconds()),
		MaxMs:     float64(baseDelay.Milliseconds()) * 10,
		Factor:    2,
		Jitter:    0.2,
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff.ComputeBackoff(policy, attempt)):
		}
	}
	return err
}
