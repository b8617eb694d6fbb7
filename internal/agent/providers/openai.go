package providers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAIProvider.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	MaxRetries   int
	RetryDelay   time.Duration
}

// OpenAIProvider implements Provider over an OpenAI-compatible chat
// completions endpoint using the go-openai client.
type OpenAIProvider struct {
	client       *openai.Client
	defaultModel string
	maxRetries   int
	retryDelay   time.Duration
}

// NewOpenAIProvider builds an OpenAIProvider from config, applying the same
// defaults a typical AnthropicConfig uses.
func NewOpenAIProvider(config OpenAIConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	if config.DefaultModel == "" {
		config.DefaultModel = openai.GPT4oMini
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if strings.TrimSpace(config.BaseURL) != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(clientConfig),
		defaultModel: config.DefaultModel,
		maxRetries:   config.MaxRetries,
		retryDelay:   config.RetryDelay,
	}, nil
}

// Name identifies this provider for logging and metrics.
func (p *OpenAIProvider) Name() string { return "openai" }

// Models lists the chat models this provider is configured to offer.
func (p *OpenAIProvider) Models() []Model {
	return []Model{
		{ID: openai.GPT4o, Name: "GPT-4o", ContextSize: 128000},
		{ID: openai.GPT4oMini, Name: "GPT-4o mini", ContextSize: 128000},
	}
}

// Complete sends req to the chat completions endpoint and blocks for the
// single resulting message, retrying transient failures.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	messages := p.convertMessages(req)

	var resp openai.ChatCompletionResponse
	err := retry(ctx, p.maxRetries, p.retryDelay, isRetryableOpenAIError, func() error {
		var apiErr error
		resp, apiErr = p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     model,
			Messages:  messages,
			MaxTokens: maxTokensOrDefault(req.MaxTokens),
		})
		return apiErr
	})
	if err != nil {
		return CompletionResponse{}, wrapUnavailable(err)
	}

	if len(resp.Choices) == 0 {
		return CompletionResponse{}, wrapMalformed(errors.New("openai: response contained no choices"))
	}

	return CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (p *OpenAIProvider) convertMessages(req CompletionRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return messages
}

// isRetryableOpenAIError classifies rate limits, server errors, and
// transport failures as retryable; auth and validation failures are not.
func isRetryableOpenAIError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}

	msg := err.Error()
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF")
}
