package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent"
	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// ListTasksTool implements the read-only list_tasks tool.
type ListTasksTool struct {
	store tasks.Store
}

// NewListTasksTool constructs the list_tasks tool over store.
func NewListTasksTool(store tasks.Store) *ListTasksTool {
	return &ListTasksTool{store: store}
}

func (t *ListTasksTool) Name() string { return "list_tasks" }

func (t *ListTasksTool) Description() string {
	return "List the acting user's tasks, optionally filtered by status, category, priority, due date, tags, or a free-text search, and sorted by priority, due date, or creation time."
}

func (t *ListTasksTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"status": {"type": "string", "enum": ["all", "active", "completed"]},
			"category": {"type": "string"},
			"priority": {"type": "string", "enum": ["critical", "high", "medium", "low"]},
			"due_filter": {"type": "string", "enum": ["today", "this_week", "overdue", "none"]},
			"tags": {"type": "array", "items": {"type": "string"}},
			"search": {"type": "string"},
			"limit": {"type": "integer", "minimum": 1, "maximum": 100},
			"sort": {"type": "string", "enum": ["priority", "due_date", "created"]}
		}
	}`)
}

// ListTasksInput is the list_tasks tool's input shape.
type ListTasksInput struct {
	Status    tasks.Status    `json:"status"`
	Category  string          `json:"category"`
	Priority  models.Priority `json:"priority"`
	DueFilter tasks.DueFilter `json:"due_filter"`
	Tags      []string        `json:"tags"`
	Search    string          `json:"search"`
	Limit     int             `json:"limit"`
	Sort      tasks.SortBy    `json:"sort"`
}

func (t *ListTasksTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	userID := agent.UserIDFromContext(ctx)
	if userID == "" {
		return nil, fmt.Errorf("list_tasks: no acting user in context")
	}

	var input ListTasksInput
	if len(params) > 0 {
		if err := json.Unmarshal(params, &input); err != nil {
			return &agent.ToolResult{Content: fmt.Sprintf("could not parse list_tasks arguments: %v", err), IsError: true}, nil
		}
	}
	if input.Status == "" {
		input.Status = tasks.StatusAll
	}

	results, err := t.store.ListTasks(ctx, userID, tasks.ListFilter{
		Status:    input.Status,
		Category:  input.Category,
		Priority:  input.Priority,
		DueFilter: input.DueFilter,
		Tags:      input.Tags,
		Search:    input.Search,
		Limit:     input.Limit,
		Sort:      input.Sort,
	})
	if err != nil {
		return toolResultFromErr(err)
	}

	if len(results) == 0 {
		return &agent.ToolResult{Content: "No tasks match that."}, nil
	}

	var b strings.Builder
	for _, task := range results {
		status := "open"
		if task.IsCompleted {
			status = "done"
		}
		fmt.Fprintf(&b, "#%d [%s, %s] %s", task.ID, status, task.Priority, task.Title)
		if task.DueDate != nil {
			fmt.Fprintf(&b, " (due %s)", task.DueDate.Format("Jan 2"))
		}
		b.WriteString("\n")
	}

	return &agent.ToolResult{Content: strings.TrimRight(b.String(), "\n")}, nil
}
