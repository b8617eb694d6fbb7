package providers

import (
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestOpenAIProvider_ConvertMessages(t *testing.T) {
	p := &OpenAIProvider{}
	req := CompletionRequest{
		System: "be helpful",
		Messages: []CompletionMessage{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi there"},
		},
	}

	got := p.convertMessages(req)
	if len(got) != 3 {
		t.Fatalf("expected 3 messages (system + 2), got %d", len(got))
	}
	if got[0].Role != openai.ChatMessageRoleSystem || got[0].Content != "be helpful" {
		t.Errorf("expected system message first, got %+v", got[0])
	}
}

func TestOpenAIProvider_ConvertMessages_NoSystem(t *testing.T) {
	p := &OpenAIProvider{}
	req := CompletionRequest{
		Messages: []CompletionMessage{{Role: "user", Content: "hello"}},
	}

	got := p.convertMessages(req)
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
}

func TestIsRetryableOpenAIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &openai.APIError{HTTPStatusCode: 429}, true},
		{"server error", &openai.APIError{HTTPStatusCode: 503}, true},
		{"bad request", &openai.APIError{HTTPStatusCode: 400}, false},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401}, false},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"generic error", errors.New("something else went wrong"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableOpenAIError(tt.err); got != tt.want {
				t.Errorf("isRetryableOpenAIError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewOpenAIProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{})
	if err == nil {
		t.Fatal("expected error when API key is empty")
	}
}

func TestNewOpenAIProvider_AppliesDefaults(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.defaultModel == "" {
		t.Error("expected a default model to be set")
	}
	if p.maxRetries != 3 {
		t.Errorf("maxRetries = %d, want 3", p.maxRetries)
	}
}
