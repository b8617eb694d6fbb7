package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent/providers"
)

func TestClassify_ArabicScript(t *testing.T) {
	if got := Classify("یہ کام ہو گیا"); got != LanguageUrdu {
		t.Errorf("Classify() = %v, want %v", got, LanguageUrdu)
	}
}

func TestClassify_RomanisedKeyword(t *testing.T) {
	if got := Classify("Task complete hai"); got != LanguageUrdu {
		t.Errorf("Classify() = %v, want %v", got, LanguageUrdu)
	}
}

func TestClassify_English(t *testing.T) {
	if got := Classify("Task created successfully."); got != LanguageEnglish {
		t.Errorf("Classify() = %v, want %v", got, LanguageEnglish)
	}
}

func TestClassify_KeywordMustBeWholeWord(t *testing.T) {
	if got := Classify("this is a bohemian rhapsody hairdo"); got != LanguageEnglish {
		t.Errorf("Classify() = %v, want %v (substring match on 'hai' inside other words must not trigger)", got, LanguageEnglish)
	}
}

type translateStub struct {
	resp providers.CompletionResponse
	err  error
}

func (s *translateStub) Name() string           { return "stub" }
func (s *translateStub) Models() []providers.Model { return nil }
func (s *translateStub) Complete(ctx context.Context, req providers.CompletionRequest) (providers.CompletionResponse, error) {
	return s.resp, s.err
}

func TestTranslateIfNeeded_SkipsWhenDeclaredEnglish(t *testing.T) {
	stub := &translateStub{resp: providers.CompletionResponse{Text: "should not be used"}}
	got := TranslateIfNeeded(context.Background(), stub, nil, LanguageEnglish, "Task created.")
	if got != "Task created." {
		t.Errorf("expected original text unchanged, got %q", got)
	}
}

func TestTranslateIfNeeded_SkipsWhenAlreadyTargetLanguage(t *testing.T) {
	stub := &translateStub{resp: providers.CompletionResponse{Text: "should not be used"}}
	got := TranslateIfNeeded(context.Background(), stub, nil, LanguageUrdu, "یہ کام ہو گیا")
	if got != "یہ کام ہو گیا" {
		t.Errorf("expected original text unchanged, got %q", got)
	}
}

func TestTranslateIfNeeded_TranslatesEnglishReplyForUrdu(t *testing.T) {
	stub := &translateStub{resp: providers.CompletionResponse{Text: "یہ کام ہو گیا"}}
	got := TranslateIfNeeded(context.Background(), stub, nil, LanguageUrdu, "Task created.")
	if got != "یہ کام ہو گیا" {
		t.Errorf("expected translated text, got %q", got)
	}
}

func TestTranslateIfNeeded_SwallowsFailure(t *testing.T) {
	stub := &translateStub{err: errors.New("llm unavailable")}
	got := TranslateIfNeeded(context.Background(), stub, nil, LanguageUrdu, "Task created.")
	if got != "Task created." {
		t.Errorf("expected original text on translation failure, got %q", got)
	}
}
