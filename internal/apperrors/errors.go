// Package apperrors defines the small set of error kinds that cross the
// chat agent's component boundaries: tool dispatch, the task store, the
// conversation store, and the LLM client all fail in one of these ways,
// never with a bare string or a raw driver error.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind categorises an Error for propagation and retry decisions.
type Kind string

const (
	// KindInvalidInput means the caller's request (or an LLM-proposed tool
	// call) violated a validation rule. Recovered locally; never escalated.
	KindInvalidInput Kind = "invalid_input"

	// KindNotFound means the target entity does not exist under the
	// acting user's partition. Existence of rows owned by other users is
	// never revealed, so this is also returned for cross-tenant lookups.
	KindNotFound Kind = "not_found"

	// KindStorageUnavailable means the relational store could not
	// complete the operation.
	KindStorageUnavailable Kind = "storage_unavailable"

	// KindLLMUnavailable means the LLM HTTP call timed out, failed
	// transport-side, or was rate limited.
	KindLLMUnavailable Kind = "llm_unavailable"

	// KindLLMMalformed means the LLM returned a response that could not
	// be parsed at the transport layer. Treated as KindLLMUnavailable
	// from the user's perspective.
	KindLLMMalformed Kind = "llm_malformed"
)

// Error is the structured error type returned across component boundaries.
type Error struct {
	Kind Kind

	// Field names the offending input field for KindInvalidInput.
	Field string

	// Message is a short, user-safe reason. It must never contain stack
	// traces, SQL text, or raw upstream error bodies.
	Message string

	// Cause is the underlying error, kept for logs but never surfaced
	// to the user.
	Cause error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error { return e.Cause }

// Retryable reports whether the caller may usefully retry the operation.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindStorageUnavailable, KindLLMUnavailable, KindLLMMalformed:
		return true
	default:
		return false
	}
}

// InvalidInput builds a KindInvalidInput error naming the offending field.
func InvalidInput(field, message string) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Message: message}
}

// NotFound builds a KindNotFound error for the named entity kind.
func NotFound(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

// StorageUnavailable wraps a lower-level storage error without leaking its
// internals to the caller.
func StorageUnavailable(cause error) *Error {
	return &Error{Kind: KindStorageUnavailable, Message: "the service is temporarily unavailable", Cause: cause}
}

// LLMUnavailable wraps a transport-level LLM failure (timeout, 5xx, 429).
func LLMUnavailable(cause error) *Error {
	return &Error{Kind: KindLLMUnavailable, Message: "the language model is temporarily unavailable", Cause: cause}
}

// LLMMalformed wraps a response that failed to parse at the transport layer.
func LLMMalformed(cause error) *Error {
	return &Error{Kind: KindLLMMalformed, Message: "the language model returned an unreadable response", Cause: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// As extracts an *Error from err's chain, if present.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
