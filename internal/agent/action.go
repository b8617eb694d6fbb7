package agent

import (
	"encoding/json"
	"strings"
)

// Action is the structured directive an assistant reply may carry: a tool
// to invoke, its arguments, and the prose the model wants shown to the
// user if the action cannot be carried out (or as a lead-in once it is).
type Action struct {
	Name      string          `json:"action"`
	Arguments json.RawMessage `json:"arguments"`
	Reply     string          `json:"reply"`
}

// ExtractAction scans assistant text for the first top-level JSON object
// carrying a non-empty "action" field. The model is free to wrap the
// object in prose or fence it with triple backticks; this function is
// tolerant of both and of multiple candidate objects, taking the first
// one that both parses and names an action. It returns ok=false when no
// such object is found, meaning the text should be treated as a plain
// conversational reply.
func ExtractAction(text string) (Action, bool) {
	for _, candidate := range candidateJSONObjects(text) {
		var a Action
		if err := json.Unmarshal([]byte(candidate), &a); err != nil {
			continue
		}
		if strings.TrimSpace(a.Name) == "" {
			continue
		}
		return a, true
	}
	return Action{}, false
}

// candidateJSONObjects returns every brace-balanced top-level substring of
// text that could be a JSON object, in order of appearance. It does not
// validate JSON syntax beyond brace balance; json.Unmarshal does the rest.
func candidateJSONObjects(text string) []string {
	var candidates []string

	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					candidates = append(candidates, text[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}
