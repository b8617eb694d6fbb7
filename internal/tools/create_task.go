// Package tools implements the Tool Registry's closed set of callable
// tools: create_task, list_tasks, complete_task, uncomplete_task,
// update_task, delete_task. Each tool is a thin, stateless adapter between
// the LLM's structured action call and the Task Store Adapter.
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

// CreateTaskTool implements the create_task tool.
type CreateTaskTool struct {
	store tasks.Store
}

// NewCreateTaskTool constructs the create_task tool over store.
func NewCreateTaskTool(store tasks.Store) *CreateTaskTool {
	return &CreateTaskTool{store: store}
}

func (t *CreateTaskTool) Name() string { return "create_task" }

func (t *CreateTaskTool) Description() string {
	return "Create a new task. Title is required; description, priority, due date, category, tags, and a recurrence pattern are optional."
}

func (t *CreateTaskTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {"type": "string", "description": "The task title, 1-200 characters"},
			"description": {"type": "string"},
			"priority": {"type": "string", "enum": ["critical", "high", "medium", "low"]},
			"due_date": {"type": "string", "description": "An absolute timestamp or a relative phrase like 'in 3 days'"},
			"category": {"type": "string"},
			"tags": {"type": "array", "items": {"type": "string"}},
			"recurrence": {
				"type": "object",
				"properties": {
					"pattern": {"type": "string", "enum": ["daily", "weekly", "monthly", "custom"]},
					"interval": {"type": "integer", "minimum": 1}
				},
				"required": ["pattern"]
			}
		},
		"required": ["title"]
	}`)
}

// CreateTaskInput is the create_task tool's input shape.
type CreateTaskInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.Priority     `json:"priority"`
	DueDate     string              `json:"due_date"`
	Category    string              `json:"category"`
	Tags        []string            `json:"tags"`
	Recurrence  *RecurrenceArgument `json:"recurrence"`
}

// RecurrenceArgument is the nested recurrence object create_task accepts.
type RecurrenceArgument struct {
	Pattern  models.RecurrencePattern `json:"pattern"`
	Interval int                      `json:"interval"`
}

func (t *CreateTaskTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	userID := agent.UserIDFromContext(ctx)
	if userID == "" {
		return nil, fmt.Errorf("create_task: no acting user in context")
	}

	var input CreateTaskInput
	if err := json.Unmarshal(params, &input); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("could not parse create_task arguments: %v", err), IsError: true}, nil
	}

	storeInput := tasks.CreateTaskInput{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Category:    input.Category,
		Tags:        input.Tags,
	}

	hashtagTags, title := tasks.ExtractHashtags(input.Title)
	keywordPattern, title := tasks.ExtractRecurrenceKeyword(title)
	storeInput.Title = title
	storeInput.Tags = append(storeInput.Tags, hashtagTags...)

	if input.DueDate != "" {
		due, err := tasks.ParseDueDate(input.DueDate, time.Now())
		if err != nil {
			return &agent.ToolResult{Content: fmt.Sprintf("could not understand due date %q", input.DueDate), IsError: true}, nil
		}
		storeInput.DueDate = &due
	}

	switch {
	case input.Recurrence != nil:
		storeInput.Recurrence = &input.Recurrence.Pattern
		storeInput.RecurrenceN = input.Recurrence.Interval
	case keywordPattern != models.RecurrenceNone:
		storeInput.Recurrence = &keywordPattern
	}

	task, err := t.store.CreateTask(ctx, storeInput)
	if err != nil {
		return toolResultFromErr(err)
	}

	return &agent.ToolResult{
		Content: fmt.Sprintf("Created task #%d: %q", task.ID, task.Title),
	}, nil
}
