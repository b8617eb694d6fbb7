package agent

import (
	"context"
	"log/slog"
	"unicode"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent/providers"
)

// LanguageCode identifies a supported output language. The set is small and
// closed; callers validate against SupportedLanguages before reaching the
// chat agent.
type LanguageCode string

const (
	LanguageEnglish LanguageCode = "en"
	LanguageUrdu    LanguageCode = "ur"
)

// SupportedLanguages is the closed set of languages handle_chat_request
// accepts for its declared language argument.
var SupportedLanguages = map[LanguageCode]bool{
	LanguageEnglish: true,
	LanguageUrdu:    true,
}

// urduKeywords is a short list of high-signal Urdu tokens written in Latin
// script (romanised Urdu), used alongside the Unicode-range test so that a
// reply that stays in Latin characters but is clearly Urdu still classifies
// correctly. Deliberately small: this is a heuristic, not a statistical
// language-id model.
var urduKeywords = []string{"hai", "hain", "aap", "kya", "kaam", "shukriya"}

// Classify implements the Language Pipeline's heuristic classifier:
// presence of any rune in the Arabic/Urdu Unicode block, or a configured
// keyword, classifies the text as Urdu; otherwise it is classified as
// English. Deterministic and pure by design — no statistical model.
func Classify(text string) LanguageCode {
	for _, r := range text {
		if isArabicScript(r) {
			return LanguageUrdu
		}
	}
	lower := toLowerASCII(text)
	for _, kw := range urduKeywords {
		if containsWord(lower, kw) {
			return LanguageUrdu
		}
	}
	return LanguageEnglish
}

func isArabicScript(r rune) bool {
	return unicode.Is(unicode.Arabic, r)
}

func toLowerASCII(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}

func containsWord(haystack, word string) bool {
	n := len(haystack)
	m := len(word)
	if m == 0 || m > n {
		return false
	}
	for i := 0; i+m <= n; i++ {
		if haystack[i:i+m] != word {
			continue
		}
		before := i == 0 || !isWordRune(rune(haystack[i-1]))
		after := i+m == n || !isWordRune(rune(haystack[i+m]))
		if before && after {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// languageNames maps a LanguageCode to the name used in the translation
// prompt shown to the model.
var languageNames = map[LanguageCode]string{
	LanguageEnglish: "English",
	LanguageUrdu:    "Urdu",
}

// TranslateIfNeeded applies the Language Pipeline's post-processing step:
// if declared is non-English and text classifies as English, it issues one
// further Provider.Complete call with a translation-only prompt and
// returns the translation. Any failure here is swallowed — the original
// text is returned unchanged and the failure is only logged, per the
// pipeline's explicit policy that translation is best-effort.
func TranslateIfNeeded(ctx context.Context, provider providers.Provider, logger *slog.Logger, declared LanguageCode, text string) string {
	if declared == LanguageEnglish || declared == "" {
		return text
	}
	if Classify(text) != LanguageEnglish {
		return text
	}

	target, ok := languageNames[declared]
	if !ok {
		return text
	}

	resp, err := provider.Complete(ctx, providers.CompletionRequest{
		Messages: []providers.CompletionMessage{
			{Role: "user", Content: "Translate the following text to " + target + ". Preserve numbers, identifiers, and code fences exactly as written — do not translate or reformat them. Return only the translation.\n\n" + text},
		},
	})
	if err != nil {
		if logger != nil {
			logger.Warn("language pipeline: translation fallback failed", "declared_language", declared, "error", err)
		}
		return text
	}
	return resp.Text
}
