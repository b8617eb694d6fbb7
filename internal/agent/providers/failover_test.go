package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
)

type stubProvider struct {
	name string
	resp CompletionResponse
	err  error
}

func (s *stubProvider) Name() string   { return s.name }
func (s *stubProvider) Models() []Model { return nil }
func (s *stubProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	return s.resp, s.err
}

func TestFailoverProvider_PrimarySucceeds(t *testing.T) {
	primary := &stubProvider{name: "primary", resp: CompletionResponse{Text: "from primary"}}
	secondary := &stubProvider{name: "secondary", resp: CompletionResponse{Text: "from secondary"}}

	f := NewFailoverProvider(primary, secondary)
	resp, err := f.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "from primary" {
		t.Errorf("expected primary's response, got %q", resp.Text)
	}
}

func TestFailoverProvider_FallsBackOnLLMUnavailable(t *testing.T) {
	primary := &stubProvider{name: "primary", err: apperrors.LLMUnavailable(errors.New("timeout"))}
	secondary := &stubProvider{name: "secondary", resp: CompletionResponse{Text: "from secondary"}}

	f := NewFailoverProvider(primary, secondary)
	resp, err := f.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "from secondary" {
		t.Errorf("expected secondary's response after failover, got %q", resp.Text)
	}
}

func TestFailoverProvider_DoesNotFailoverOnNonTransportError(t *testing.T) {
	validationErr := apperrors.InvalidInput("model", "unsupported")
	primary := &stubProvider{name: "primary", err: validationErr}
	secondary := &stubProvider{name: "secondary", resp: CompletionResponse{Text: "should not be used"}}

	f := NewFailoverProvider(primary, secondary)
	_, err := f.Complete(context.Background(), CompletionRequest{})
	if !errors.Is(err, validationErr) {
		t.Fatalf("expected the primary's validation error to surface unchanged, got %v", err)
	}
}

func TestFailoverProvider_NoSecondaryConfigured(t *testing.T) {
	primary := &stubProvider{name: "primary", err: apperrors.LLMUnavailable(errors.New("timeout"))}

	f := NewFailoverProvider(primary, nil)
	_, err := f.Complete(context.Background(), CompletionRequest{})
	if !apperrors.Is(err, apperrors.KindLLMUnavailable) {
		t.Fatalf("expected KindLLMUnavailable, got %v", err)
	}
}

func TestFailoverProvider_SecondaryAlsoFails(t *testing.T) {
	primary := &stubProvider{name: "primary", err: apperrors.LLMUnavailable(errors.New("primary down"))}
	secondaryErr := apperrors.LLMUnavailable(errors.New("secondary down"))
	secondary := &stubProvider{name: "secondary", err: secondaryErr}

	f := NewFailoverProvider(primary, secondary)
	_, err := f.Complete(context.Background(), CompletionRequest{})
	if !errors.Is(err, secondaryErr) {
		t.Fatalf("expected secondary's error to surface, got %v", err)
	}
}

func TestFailoverProvider_Name(t *testing.T) {
	primary := &stubProvider{name: "openai"}
	secondary := &stubProvider{name: "anthropic"}

	f := NewFailoverProvider(primary, secondary)
	if got, want := f.Name(), "openai+anthropic"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}
