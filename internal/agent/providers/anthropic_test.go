package providers

import (
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestAnthropicProvider_ConvertMessages(t *testing.T) {
	p := &AnthropicProvider{}
	req := CompletionRequest{
		System: "be helpful",
		Messages: []CompletionMessage{
			{Role: "system", Content: "ignored, handled via params.System"},
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi there"},
		},
	}

	got := p.convertMessages(req)
	if len(got) != 2 {
		t.Fatalf("expected system message filtered out, got %d messages", len(got))
	}
}

func TestIsRetryableAnthropicError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &anthropic.Error{StatusCode: 429}, true},
		{"server error", &anthropic.Error{StatusCode: 500}, true},
		{"bad request", &anthropic.Error{StatusCode: 400}, false},
		{"timeout", errors.New("context deadline exceeded"), true},
		{"generic error", errors.New("unrelated failure"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableAnthropicError(tt.err); got != tt.want {
				t.Errorf("isRetryableAnthropicError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewAnthropicProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewAnthropicProvider(AnthropicConfig{})
	if err == nil {
		t.Fatal("expected error when API key is empty")
	}
}

func TestNewAnthropicProvider_AppliesDefaults(t *testing.T) {
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "sk-ant-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.defaultModel != "claude-sonnet-4-20250514" {
		t.Errorf("defaultModel = %q, want claude-sonnet-4-20250514", p.defaultModel)
	}
}
