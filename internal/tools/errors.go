package tools

import (
	"fmt"
	"strings"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent"
	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
)

// toolResultFromErr turns a Task Store Adapter error into a recoverable
// ToolResult the chat agent can fold straight into its reply, per the
// contract that InvalidInput/NotFound/StorageUnavailable are never raised
// as a Go error out of a tool.
func toolResultFromErr(err error) (*agent.ToolResult, error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		return &agent.ToolResult{Content: "something went wrong completing that request", IsError: true}, nil
	}

	switch appErr.Kind {
	case apperrors.KindInvalidInput:
		if appErr.Field != "" {
			return &agent.ToolResult{Content: fmt.Sprintf("%s: %s", appErr.Field, appErr.Message), IsError: true}, nil
		}
		return &agent.ToolResult{Content: appErr.Message, IsError: true}, nil
	case apperrors.KindNotFound:
		// appErr.Message is "<entity> <id> not found" (see
		// apperrors.NotFound); reshape it into "I couldn't find <entity>
		// <id>." so the user sees which entity was missing.
		subject := strings.TrimSuffix(appErr.Message, " not found")
		return &agent.ToolResult{Content: fmt.Sprintf("I couldn't find %s.", subject), IsError: true}, nil
	default:
		return &agent.ToolResult{Content: "the task store is temporarily unavailable, please try again", IsError: true}, nil
	}
}
