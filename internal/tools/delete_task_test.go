package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
)

func TestDeleteTaskTool_RemovesTask(t *testing.T) {
	store := tasks.NewMemoryStore()
	created, err := store.CreateTask(context.Background(), tasks.CreateTaskInput{UserID: "u1", Title: "x"})
	if err != nil {
		t.Fatalf("seed CreateTask: %v", err)
	}

	tool := NewDeleteTaskTool(store)
	params, _ := json.Marshal(taskIDInput{TaskID: created.ID})
	result, err := tool.Execute(ctxFor("u1"), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content)
	}

	if _, err := store.GetTask(context.Background(), "u1", created.ID); err == nil {
		t.Fatal("expected task to be gone")
	}
}

func TestDeleteTaskTool_UnknownTaskReturnsErrorResult(t *testing.T) {
	store := tasks.NewMemoryStore()
	tool := NewDeleteTaskTool(store)

	params, _ := json.Marshal(taskIDInput{TaskID: 42})
	result, err := tool.Execute(ctxFor("u1"), params)
	if err != nil {
		t.Fatalf("Execute returned a Go error, want a recoverable ToolResult: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError for an unknown task id")
	}
}
