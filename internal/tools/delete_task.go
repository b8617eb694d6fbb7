package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent"
	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
)

// DeleteTaskTool implements the delete_task tool.
type DeleteTaskTool struct {
	store tasks.Store
}

// NewDeleteTaskTool constructs the delete_task tool over store.
func NewDeleteTaskTool(store tasks.Store) *DeleteTaskTool {
	return &DeleteTaskTool{store: store}
}

func (t *DeleteTaskTool) Name() string { return "delete_task" }

func (t *DeleteTaskTool) Description() string {
	return "Permanently delete a task by its id, along with its subtasks, tag links, attachments, and activity history."
}

func (t *DeleteTaskTool) Schema() json.RawMessage { return taskIDSchema() }

func (t *DeleteTaskTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	userID := agent.UserIDFromContext(ctx)
	if userID == "" {
		return nil, fmt.Errorf("delete_task: no acting user in context")
	}

	var input taskIDInput
	if err := json.Unmarshal(params, &input); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("could not parse task_id: %v", err), IsError: true}, nil
	}

	if err := t.store.DeleteTask(ctx, userID, input.TaskID); err != nil {
		return toolResultFromErr(err)
	}

	return &agent.ToolResult{Content: fmt.Sprintf("Deleted task #%d", input.TaskID)}, nil
}
