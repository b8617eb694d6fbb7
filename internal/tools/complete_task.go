package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent"
	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
)

// taskIDInput is the shared {task_id} input shape for complete_task,
// uncomplete_task, and delete_task.
type taskIDInput struct {
	TaskID int64 `json:"task_id"`
}

func taskIDSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"task_id": {"type": "integer"}
		},
		"required": ["task_id"]
	}`)
}

// CompleteTaskTool implements the complete_task tool.
type CompleteTaskTool struct {
	store tasks.Store
}

// NewCompleteTaskTool constructs the complete_task tool over store.
func NewCompleteTaskTool(store tasks.Store) *CompleteTaskTool {
	return &CompleteTaskTool{store: store}
}

func (t *CompleteTaskTool) Name() string { return "complete_task" }

func (t *CompleteTaskTool) Description() string {
	return "Mark a task as completed by its id."
}

func (t *CompleteTaskTool) Schema() json.RawMessage { return taskIDSchema() }

func (t *CompleteTaskTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	return setCompleted(ctx, t.store, params, true)
}

// UncompleteTaskTool implements the uncomplete_task tool.
type UncompleteTaskTool struct {
	store tasks.Store
}

// NewUncompleteTaskTool constructs the uncomplete_task tool over store.
func NewUncompleteTaskTool(store tasks.Store) *UncompleteTaskTool {
	return &UncompleteTaskTool{store: store}
}

func (t *UncompleteTaskTool) Name() string { return "uncomplete_task" }

func (t *UncompleteTaskTool) Description() string {
	return "Mark a previously completed task as active again, by its id."
}

func (t *UncompleteTaskTool) Schema() json.RawMessage { return taskIDSchema() }

func (t *UncompleteTaskTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	return setCompleted(ctx, t.store, params, false)
}

func setCompleted(ctx context.Context, store tasks.Store, params json.RawMessage, completed bool) (*agent.ToolResult, error) {
	userID := agent.UserIDFromContext(ctx)
	if userID == "" {
		return nil, fmt.Errorf("no acting user in context")
	}

	var input taskIDInput
	if err := json.Unmarshal(params, &input); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("could not parse task_id: %v", err), IsError: true}, nil
	}

	task, err := store.SetCompleted(ctx, userID, input.TaskID, completed)
	if err != nil {
		return toolResultFromErr(err)
	}

	verb := "Completed"
	if !completed {
		verb = "Reopened"
	}
	return &agent.ToolResult{Content: fmt.Sprintf("%s task #%d: %q", verb, task.ID, task.Title)}, nil
}
