// Package tasks is the Task Store Adapter: the only component that issues
// SQL against the task/category/tag/subtask/attachment/activity tables.
// Every operation is scoped by user_id per the data model's "golden rule" —
// a row owned by another user is invisible, never reported as forbidden.
package tasks

import (
	"context"
	"time"

	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// Status narrows a list_tasks query by completion state.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// DueFilter narrows a list_tasks query by due date.
type DueFilter string

const (
	DueFilterNone     DueFilter = "none"
	DueFilterToday    DueFilter = "today"
	DueFilterThisWeek DueFilter = "this_week"
	DueFilterOverdue  DueFilter = "overdue"
)

// SortBy orders a list_tasks result.
type SortBy string

const (
	SortByCreated  SortBy = "created"
	SortByPriority SortBy = "priority"
	SortByDueDate  SortBy = "due_date"
)

// DefaultListLimit and MaxListLimit bound how many rows list_tasks returns.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ListFilter captures every list_tasks predicate.
type ListFilter struct {
	Status   Status
	Category string
	Priority models.Priority
	DueFilter DueFilter
	Tags     []string
	Search   string
	Limit    int
	Sort     SortBy
}

// CreateTaskInput is the validated, already-parsed input to create a task.
// Natural-language due dates and hashtag/recurrence-keyword extraction
// happen in parse.go before a CreateTaskInput is built.
type CreateTaskInput struct {
	UserID      string
	Title       string
	Description string
	Priority    models.Priority
	DueDate     *time.Time
	Category    string
	Tags        []string
	Recurrence  *models.RecurrencePattern
	RecurrenceN int
}

// UpdateTaskFields carries only the fields the caller supplied; nil/zero
// fields are left untouched by Store.UpdateTask.
type UpdateTaskFields struct {
	Title       *string
	Description *string
	IsCompleted *bool
	Priority    *models.Priority
	DueDate     *time.Time
	Category    *string
	Tags        []string
}

// TaskProjection is the bounded view of a task suitable for embedding in
// an LLM prompt: identifying fields only, never notes or activity.
type TaskProjection = models.TaskProjection

// Store is the Task Store Adapter's full surface. Every method takes the
// acting user's id and MUST NOT return or mutate a row belonging to
// another user; cross-tenant references resolve as apperrors.NotFound.
type Store interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error)
	GetTask(ctx context.Context, userID string, taskID int64) (*models.Task, error)
	ListTasks(ctx context.Context, userID string, filter ListFilter) ([]*models.Task, error)
	UpdateTask(ctx context.Context, userID string, taskID int64, fields UpdateTaskFields) (*models.Task, error)
	SetCompleted(ctx context.Context, userID string, taskID int64, completed bool) (*models.Task, error)
	DeleteTask(ctx context.Context, userID string, taskID int64) error

	// RecentTasks returns the most recent N tasks for the acting user as a
	// bounded projection, for embedding in the chat agent's system prompt.
	RecentTasks(ctx context.Context, userID string, limit int) ([]TaskProjection, error)

	// DueTemplates returns recurring templates (recurrence_pattern != none)
	// whose next_recurrence_date is at or before asOf, for the Recurrence
	// Materialiser's tick. Scoped internally by the template's own owner;
	// the materialiser has no single acting user.
	DueTemplates(ctx context.Context, asOf time.Time, limit int) ([]*models.Task, error)

	// MaterialiseOccurrence performs the insert-next-occurrence-plus-
	// advance-template mutation in a single transaction, scoped to the
	// template's own owner.
	MaterialiseOccurrence(ctx context.Context, template *models.Task, nextOccurrence time.Time) error

	ResolveCategory(ctx context.Context, userID, name string) (*models.Category, error)
	ResolveTags(ctx context.Context, userID string, names []string) ([]*models.Tag, error)
}
