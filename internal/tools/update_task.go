package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent"
	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// UpdateTaskTool implements the update_task tool.
type UpdateTaskTool struct {
	store tasks.Store
}

// NewUpdateTaskTool constructs the update_task tool over store.
func NewUpdateTaskTool(store tasks.Store) *UpdateTaskTool {
	return &UpdateTaskTool{store: store}
}

func (t *UpdateTaskTool) Name() string { return "update_task" }

func (t *UpdateTaskTool) Description() string {
	return "Update one or more fields of an existing task by its id. Only the fields supplied are changed; unknown fields are ignored."
}

func (t *UpdateTaskTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"task_id": {"type": "integer"},
			"fields": {
				"type": "object",
				"properties": {
					"title": {"type": "string"},
					"description": {"type": "string"},
					"is_completed": {"type": "boolean"},
					"priority": {"type": "string", "enum": ["critical", "high", "medium", "low"]},
					"due_date": {"type": "string"},
					"category": {"type": "string"},
					"tags": {"type": "array", "items": {"type": "string"}}
				}
			}
		},
		"required": ["task_id", "fields"]
	}`)
}

// UpdateTaskInput is the update_task tool's input shape.
type UpdateTaskInput struct {
	TaskID int64            `json:"task_id"`
	Fields UpdateTaskFields `json:"fields"`
}

// UpdateTaskFields mirrors tasks.UpdateTaskFields but with plain JSON
// fields the model emits; nil pointers mean "leave this field alone".
type UpdateTaskFields struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	IsCompleted *bool            `json:"is_completed"`
	Priority    *models.Priority `json:"priority"`
	DueDate     *string          `json:"due_date"`
	Category    *string          `json:"category"`
	Tags        []string         `json:"tags"`
}

func (t *UpdateTaskTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	userID := agent.UserIDFromContext(ctx)
	if userID == "" {
		return nil, fmt.Errorf("update_task: no acting user in context")
	}

	var input UpdateTaskInput
	if err := json.Unmarshal(params, &input); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("could not parse update_task arguments: %v", err), IsError: true}, nil
	}

	fields := tasks.UpdateTaskFields{
		Title:       input.Fields.Title,
		Description: input.Fields.Description,
		IsCompleted: input.Fields.IsCompleted,
		Priority:    input.Fields.Priority,
		Category:    input.Fields.Category,
		Tags:        input.Fields.Tags,
	}

	if input.Fields.DueDate != nil {
		due, err := tasks.ParseDueDate(*input.Fields.DueDate, time.Now())
		if err != nil {
			return &agent.ToolResult{Content: fmt.Sprintf("could not understand due date %q", *input.Fields.DueDate), IsError: true}, nil
		}
		fields.DueDate = &due
	}

	task, err := t.store.UpdateTask(ctx, userID, input.TaskID, fields)
	if err != nil {
		return toolResultFromErr(err)
	}

	return &agent.ToolResult{Content: fmt.Sprintf("Updated task #%d: %q", task.ID, task.Title)}, nil
}
