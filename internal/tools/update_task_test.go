package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

func strPtr(s string) *string { return &s }

func TestUpdateTaskTool_AppliesOnlySuppliedFields(t *testing.T) {
	store := tasks.NewMemoryStore()
	created, err := store.CreateTask(context.Background(), tasks.CreateTaskInput{
		UserID: "u1", Title: "Old title", Description: "keep me", Priority: models.PriorityLow,
	})
	if err != nil {
		t.Fatalf("seed CreateTask: %v", err)
	}

	tool := NewUpdateTaskTool(store)
	newPriority := models.PriorityCritical
	params, _ := json.Marshal(UpdateTaskInput{
		TaskID: created.ID,
		Fields: UpdateTaskFields{Title: strPtr("New title"), Priority: &newPriority},
	})

	result, err := tool.Execute(ctxFor("u1"), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content)
	}

	got, err := store.GetTask(context.Background(), "u1", created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "New title" {
		t.Errorf("title = %q, want New title", got.Title)
	}
	if got.Priority != models.PriorityCritical {
		t.Errorf("priority = %q, want critical", got.Priority)
	}
	if got.Description != "keep me" {
		t.Errorf("description = %q, want untouched", got.Description)
	}
}

func TestUpdateTaskTool_InvalidDueDateReturnsErrorResult(t *testing.T) {
	store := tasks.NewMemoryStore()
	created, err := store.CreateTask(context.Background(), tasks.CreateTaskInput{UserID: "u1", Title: "x"})
	if err != nil {
		t.Fatalf("seed CreateTask: %v", err)
	}

	tool := NewUpdateTaskTool(store)
	params, _ := json.Marshal(UpdateTaskInput{
		TaskID: created.ID,
		Fields: UpdateTaskFields{DueDate: strPtr("not a date at all zzz")},
	})

	result, err := tool.Execute(ctxFor("u1"), params)
	if err != nil {
		t.Fatalf("Execute returned a Go error, want a recoverable ToolResult: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError for an unparseable due date")
	}
}
