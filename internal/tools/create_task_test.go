package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent"
	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
)

func ctxFor(userID string) context.Context {
	return agent.ContextWithUserID(context.Background(), userID)
}

func TestCreateTaskTool_CreatesTaskWithHashtagsAndRecurrence(t *testing.T) {
	store := tasks.NewMemoryStore()
	tool := NewCreateTaskTool(store)

	params, _ := json.Marshal(CreateTaskInput{Title: "Water plants #garden daily"})
	result, err := tool.Execute(ctxFor("u1"), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content)
	}

	list, err := store.ListTasks(context.Background(), "u1", tasks.ListFilter{Status: tasks.StatusAll})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 task, got %d", len(list))
	}
	task := list[0]
	if task.Title != "Water plants" {
		t.Errorf("title = %q, want hashtag/keyword stripped", task.Title)
	}
	if len(task.Tags) != 1 || task.Tags[0] != "garden" {
		t.Errorf("tags = %v, want [garden]", task.Tags)
	}
	if task.RecurrencePattern != "daily" {
		t.Errorf("recurrence pattern = %q, want daily", task.RecurrencePattern)
	}
}

func TestCreateTaskTool_EmptyTitleReturnsErrorResult(t *testing.T) {
	store := tasks.NewMemoryStore()
	tool := NewCreateTaskTool(store)

	params, _ := json.Marshal(CreateTaskInput{Title: "   "})
	result, err := tool.Execute(ctxFor("u1"), params)
	if err != nil {
		t.Fatalf("Execute returned a Go error, want a recoverable ToolResult: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError for an empty title")
	}
}

func TestCreateTaskTool_NoUserInContextReturnsGoError(t *testing.T) {
	store := tasks.NewMemoryStore()
	tool := NewCreateTaskTool(store)

	params, _ := json.Marshal(CreateTaskInput{Title: "x"})
	_, err := tool.Execute(context.Background(), params)
	if err == nil {
		t.Fatal("expected an error when no acting user is in context")
	}
}
