package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
)

func TestCompleteTaskTool_MarksTaskDone(t *testing.T) {
	store := tasks.NewMemoryStore()
	created, err := store.CreateTask(context.Background(), tasks.CreateTaskInput{UserID: "u1", Title: "Ship release"})
	if err != nil {
		t.Fatalf("seed CreateTask: %v", err)
	}

	tool := NewCompleteTaskTool(store)
	params, _ := json.Marshal(taskIDInput{TaskID: created.ID})
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
	if !got.IsCompleted {
		t.Error("expected task to be completed")
	}
}

func TestCompleteTaskTool_UnknownTaskReturnsErrorResult(t *testing.T) {
	store := tasks.NewMemoryStore()
	tool := NewCompleteTaskTool(store)

	params, _ := json.Marshal(taskIDInput{TaskID: 999})
	result, err := tool.Execute(ctxFor("u1"), params)
	if err != nil {
		t.Fatalf("Execute returned a Go error, want a recoverable ToolResult: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError for an unknown task id")
	}
}

func TestUncompleteTaskTool_ReopensTask(t *testing.T) {
	store := tasks.NewMemoryStore()
	created, err := store.CreateTask(context.Background(), tasks.CreateTaskInput{UserID: "u1", Title: "Ship release"})
	if err != nil {
		t.Fatalf("seed CreateTask: %v", err)
	}
	if _, err := store.SetCompleted(context.Background(), "u1", created.ID, true); err != nil {
		t.Fatalf("seed SetCompleted: %v", err)
	}

	tool := NewUncompleteTaskTool(store)
	params, _ := json.Marshal(taskIDInput{TaskID: created.ID})
	if _, err := tool.Execute(ctxFor("u1"), params); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got, err := store.GetTask(context.Background(), "u1", created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.IsCompleted {
		t.Error("expected task to be reopened")
	}
}

func TestCompleteTaskTool_CrossTenantTaskIsNotFound(t *testing.T) {
	store := tasks.NewMemoryStore()
	created, err := store.CreateTask(context.Background(), tasks.CreateTaskInput{UserID: "owner", Title: "private"})
	if err != nil {
		t.Fatalf("seed CreateTask: %v", err)
	}

	tool := NewCompleteTaskTool(store)
	params, _ := json.Marshal(taskIDInput{TaskID: created.ID})
	result, err := tool.Execute(ctxFor("intruder"), params)
	if err != nil {
		t.Fatalf("Execute returned a Go error, want a recoverable ToolResult: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError for a cross-tenant task id")
	}
}
