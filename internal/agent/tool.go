package agent

import (
	"context"
	"encoding/json"
)

// Tool is a single named, typed operation the chat agent may invoke as the
// result of interpreting the user's intent through the LLM. The registry's
// tool set is closed: create_task, list_tasks, complete_task,
// uncomplete_task, update_task, delete_task.
type Tool interface {
	// Name returns the tool name as it appears in the action directive
	// the LLM emits (the "action" field).
	Name() string

	// Description is surfaced to the LLM as part of the tool catalogue in
	// the system prompt.
	Description() string

	// Schema returns the JSON Schema describing the tool's input fields.
	Schema() json.RawMessage

	// Execute runs the tool for the given acting user. Implementations
	// must enforce the per-user partition themselves; the registry does
	// not inject the user id into params.
	Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

// ToolResult is the output of a tool execution, already phrased as a
// human-readable string the chat agent can fold into its reply.
type ToolResult struct {
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}
