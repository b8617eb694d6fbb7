package apperrors

import (
	"errors"
	"testing"
)

func TestError_Retryable(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindStorageUnavailable, true},
		{KindLLMUnavailable, true},
		{KindLLMMalformed, true},
		{KindInvalidInput, false},
		{KindNotFound, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e := &Error{Kind: tt.kind}
			if got := e.Retryable(); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvalidInput_CarriesField(t *testing.T) {
	err := InvalidInput("title", "must not be empty")

	if !Is(err, KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if e.Field != "title" {
		t.Errorf("Field = %q, want %q", e.Field, "title")
	}
}

func TestNotFound_MessageNamesEntity(t *testing.T) {
	err := NotFound("task", 999)
	if !Is(err, KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
	if err.Error() == "" {
		t.Error("expected non-empty error string")
	}
}

func TestStorageUnavailable_DoesNotLeakCause(t *testing.T) {
	cause := errors.New("pq: relation \"tasks\" does not exist")
	err := StorageUnavailable(cause)

	if err.Message == cause.Error() {
		t.Error("user-facing message must not equal the raw driver error")
	}
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause for logging via errors.Is")
	}
}

func TestAs_ExtractsStructuredError(t *testing.T) {
	err := LLMUnavailable(errors.New("dial tcp: timeout"))
	e, ok := As(err)
	if !ok {
		t.Fatal("expected As to succeed")
	}
	if e.Kind != KindLLMUnavailable {
		t.Errorf("Kind = %v, want %v", e.Kind, KindLLMUnavailable)
	}
}
