package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

func TestMemoryStore_CreateAndGetTask(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "Buy milk"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected a non-zero task id")
	}
	if created.Priority != models.DefaultPriority {
		t.Errorf("priority = %v, want default", created.Priority)
	}

	got, err := s.GetTask(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "Buy milk" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestMemoryStore_CreateTask_EmptyTitleRejected(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.CreateTask(context.Background(), CreateTaskInput{UserID: "u1", Title: "   "})
	if !apperrors.Is(err, apperrors.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
}

func TestMemoryStore_CreateTask_InvalidPriorityRejected(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.CreateTask(context.Background(), CreateTaskInput{UserID: "u1", Title: "x", Priority: "urgentish"})
	if !apperrors.Is(err, apperrors.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
}

func TestMemoryStore_CreateTask_RecurringSetsNextRecurrence(t *testing.T) {
	s := NewMemoryStore()
	pattern := models.RecurrenceDaily
	task, err := s.CreateTask(context.Background(), CreateTaskInput{
		UserID: "u1", Title: "Water plants", Recurrence: &pattern, RecurrenceN: 1,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.NextRecurrenceDate == nil {
		t.Fatal("expected NextRecurrenceDate to be set for a recurring template")
	}
}

func TestMemoryStore_GetTask_CrossTenantIsNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created, _ := s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "secret"})

	_, err := s.GetTask(ctx, "u2", created.ID)
	if !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected KindNotFound for cross-tenant lookup, got %v", err)
	}
}

func TestMemoryStore_ListTasks_FiltersByStatus(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	active, _ := s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "active one"})
	done, _ := s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "done one"})
	if _, err := s.SetCompleted(ctx, "u1", done.ID, true); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}

	activeOnly, err := s.ListTasks(ctx, "u1", ListFilter{Status: StatusActive})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(activeOnly) != 1 || activeOnly[0].ID != active.ID {
		t.Fatalf("expected only the active task, got %v", activeOnly)
	}

	completedOnly, err := s.ListTasks(ctx, "u1", ListFilter{Status: StatusCompleted})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(completedOnly) != 1 || completedOnly[0].ID != done.ID {
		t.Fatalf("expected only the completed task, got %v", completedOnly)
	}
}

func TestMemoryStore_ListTasks_IsolatesByUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "mine"})
	s.CreateTask(ctx, CreateTaskInput{UserID: "u2", Title: "theirs"})

	list, err := s.ListTasks(ctx, "u1", ListFilter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 1 || list[0].Title != "mine" {
		t.Fatalf("expected only u1's task, got %v", list)
	}
}

func TestMemoryStore_ListTasks_SortsByPriority(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "low", Priority: models.PriorityLow})
	s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "critical", Priority: models.PriorityCritical})
	s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "medium", Priority: models.PriorityMedium})

	list, err := s.ListTasks(ctx, "u1", ListFilter{Sort: SortByPriority})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 3 || list[0].Title != "critical" || list[2].Title != "low" {
		t.Fatalf("unexpected priority order: %v", list)
	}
}

func TestMemoryStore_ListTasks_TagFilterRequiresAll(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "a", Tags: []string{"work", "urgent"}})
	s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "b", Tags: []string{"work"}})

	list, err := s.ListTasks(ctx, "u1", ListFilter{Tags: []string{"work", "urgent"}})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 1 || list[0].Title != "a" {
		t.Fatalf("expected only task a, got %v", list)
	}
}

func TestMemoryStore_ListTasks_LimitClampedToMax(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "t"})
	}

	list, err := s.ListTasks(ctx, "u1", ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected limit to be honoured, got %d results", len(list))
	}
}

func TestMemoryStore_UpdateTask_PartialFieldsOnly(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created, _ := s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "old", Description: "keep me"})

	newTitle := "new"
	updated, err := s.UpdateTask(ctx, "u1", created.ID, UpdateTaskFields{Title: &newTitle})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Title != "new" {
		t.Errorf("title = %q, want new", updated.Title)
	}
	if updated.Description != "keep me" {
		t.Errorf("description = %q, want unchanged", updated.Description)
	}
}

func TestMemoryStore_UpdateTask_CrossTenantIsNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created, _ := s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "x"})

	newTitle := "hijacked"
	_, err := s.UpdateTask(ctx, "u2", created.ID, UpdateTaskFields{Title: &newTitle})
	if !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestMemoryStore_SetCompleted_TogglesState(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created, _ := s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "x"})

	updated, err := s.SetCompleted(ctx, "u1", created.ID, true)
	if err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	if !updated.IsCompleted {
		t.Error("expected task to be completed")
	}
}

func TestMemoryStore_DeleteTask_RemovesIt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created, _ := s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "x"})

	if err := s.DeleteTask(ctx, "u1", created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := s.GetTask(ctx, "u1", created.ID); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected KindNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_DeleteTask_CrossTenantIsNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created, _ := s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "x"})

	if err := s.DeleteTask(ctx, "u2", created.ID); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestMemoryStore_RecentTasks_BoundedAndOrdered(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "t"})
	}

	projections, err := s.RecentTasks(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("RecentTasks: %v", err)
	}
	if len(projections) != 2 {
		t.Fatalf("expected 2 projections, got %d", len(projections))
	}
}

func TestMemoryStore_DueTemplatesAndMaterialiseOccurrence(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	pattern := models.RecurrenceDaily
	template, err := s.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: "standup", Recurrence: &pattern, RecurrenceN: 1})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	asOf := template.NextRecurrenceDate.Add(time.Hour)
	due, err := s.DueTemplates(ctx, asOf, 10)
	if err != nil {
		t.Fatalf("DueTemplates: %v", err)
	}
	if len(due) != 1 || due[0].ID != template.ID {
		t.Fatalf("expected the template to be due, got %v", due)
	}

	next := asOf.Add(24 * time.Hour)
	if err := s.MaterialiseOccurrence(ctx, due[0], next); err != nil {
		t.Fatalf("MaterialiseOccurrence: %v", err)
	}

	refreshed, err := s.GetTask(ctx, "u1", template.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if !refreshed.NextRecurrenceDate.Equal(next) {
		t.Errorf("template's NextRecurrenceDate = %v, want %v", refreshed.NextRecurrenceDate, next)
	}

	list, err := s.ListTasks(ctx, "u1", ListFilter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected the template plus its materialised occurrence, got %d tasks", len(list))
	}
}

func TestMemoryStore_ResolveCategory_IsCaseInsensitiveAndIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.ResolveCategory(ctx, "u1", "Work")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	second, err := s.ResolveCategory(ctx, "u1", "work")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same category to be reused, got %d and %d", first.ID, second.ID)
	}
}

func TestMemoryStore_ResolveTags_NormalisesAndDeduplicates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	tags, err := s.ResolveTags(ctx, "u1", []string{"#Work", "work", "Urgent"})
	if err != nil {
		t.Fatalf("ResolveTags: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 resolved tags (resolution is per-call, not deduped across calls), got %d", len(tags))
	}
	if tags[0].ID != tags[1].ID {
		t.Errorf("expected 'Work' and 'work' to resolve to the same tag, got %d and %d", tags[0].ID, tags[1].ID)
	}
}

func TestMemoryStore_CreateTask_TitleTooLongRejected(t *testing.T) {
	s := NewMemoryStore()
	longTitle := make([]byte, models.MaxTitleLength+1)
	for i := range longTitle {
		longTitle[i] = 'a'
	}
	_, err := s.CreateTask(context.Background(), CreateTaskInput{UserID: "u1", Title: string(longTitle)})
	if !apperrors.Is(err, apperrors.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
}
