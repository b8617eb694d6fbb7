// Package providers implements non-streaming LLM client integrations for
// the chat agent. Each provider converts a CompletionRequest into a single
// CompletionResponse, classifying transport failures into apperrors so the
// chat agent never has to understand OpenAI or Anthropic error shapes.
package providers

import (
	"context"

	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
)

// CompletionMessage is one turn of the conversation handed to the model,
// in the role/content shape shared by every provider we speak to.
type CompletionMessage struct {
	Role    string
	Content string
}

// CompletionRequest is a single, non-streaming request for a model
// completion. There is no Tools field: the chat agent asks the model to
// emit an action directive as part of Content, per the language pipeline's
// tolerant JSON extraction, rather than relying on provider-native tool
// calling.
type CompletionRequest struct {
	Model     string
	System    string
	Messages  []CompletionMessage
	MaxTokens int
}

// CompletionResponse is the complete model reply, returned only once the
// provider has finished generating (no partial chunks).
type CompletionResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Model describes a model a provider can serve.
type Model struct {
	ID          string
	Name        string
	ContextSize int
}

// Provider is the LLM Client abstraction the chat agent depends on. All
// failures are returned as *apperrors.Error with Kind KindLLMUnavailable or
// KindLLMMalformed; callers never need to inspect provider-specific error
// types.
type Provider interface {
	// Name identifies the provider for logging and metrics.
	Name() string

	// Models lists the models this provider can serve.
	Models() []Model

	// Complete sends req and blocks until the model has finished
	// generating, or ctx is cancelled, or retries are exhausted.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// defaultMaxTokens is used when a request does not specify one.
const defaultMaxTokens = 1024

func maxTokensOrDefault(requested int) int {
	if requested <= 0 {
		return defaultMaxTokens
	}
	return requested
}

// wrapUnavailable is a convenience used by provider implementations to
// classify a transport error without needing to import apperrors directly
// in every call site.
func wrapUnavailable(cause error) error {
	return apperrors.LLMUnavailable(cause)
}

func wrapMalformed(cause error) error {
	return apperrors.LLMMalformed(cause)
}
