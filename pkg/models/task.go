// Package models defines the data types shared across the task store,
// conversation store, and chat agent.
package models

import "time"

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// DefaultPriority is used when a task is created without one.
const DefaultPriority = PriorityMedium

// ValidPriority reports whether p is one of the recognised priority levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// RecurrencePattern is the cadence at which a template task is materialised.
type RecurrencePattern string

const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
	RecurrenceCustom  RecurrencePattern = "custom"
)

// ValidRecurrencePattern reports whether p is a recognised recurrence pattern.
func ValidRecurrencePattern(p RecurrencePattern) bool {
	switch p {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceCustom:
		return true
	default:
		return false
	}
}

// MaxTitleLength is the maximum accepted length of a task title after trimming.
const MaxTitleLength = 200

// Task is a single user-owned to-do item.
//
// Every Task is partitioned by UserID; the task store adapter is the sole
// enforcer of that partition (see tasks.Store).
type Task struct {
	ID          int64  `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsCompleted bool   `json:"is_completed"`
	Priority    Priority `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`

	CategoryID *int64 `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`

	RecurrencePattern  RecurrencePattern `json:"recurrence_pattern"`
	RecurrenceInterval int               `json:"recurrence_interval"`
	NextRecurrenceDate *time.Time        `json:"next_recurrence_date,omitempty"`
	ParentRecurrenceID *int64            `json:"parent_recurrence_id,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTemplate reports whether this task is a recurring template rather than a
// one-off or materialised occurrence.
func (t *Task) IsTemplate() bool {
	return t != nil && t.RecurrencePattern != RecurrenceNone && t.RecurrencePattern != ""
}

// Category groups tasks under a user-chosen label.
type Category struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

// MaxCategoryNameLength is the maximum accepted length of a category name.
const MaxCategoryNameLength = 50

// Tag is a normalised label attached to tasks via a join row.
type Tag struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// Subtask is a checklist item owned by a parent Task.
type Subtask struct {
	ID           int64  `json:"id"`
	ParentTaskID int64  `json:"parent_task_id"`
	Title        string `json:"title"`
	IsCompleted  bool   `json:"is_completed"`
	Order        int    `json:"order"`
}

// Attachment is a file reference owned by a parent Task. Object storage
// itself is an external collaborator; this row only records the pointer.
type Attachment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    string    `json:"user_id"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename,omitempty"`
	MimeType  string    `json:"mime_type,omitempty"`
	Size      int64     `json:"size,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityAction categorises the kind of mutation an Activity row records.
type ActivityAction string

const (
	ActivityCreated         ActivityAction = "created"
	ActivityUpdated         ActivityAction = "updated"
	ActivityCompleted       ActivityAction = "completed"
	ActivityUncompleted     ActivityAction = "uncompleted"
	ActivityDeleted         ActivityAction = "deleted"
	ActivityMaterialised    ActivityAction = "materialised"
)

// Activity is a write-only audit row recorded alongside a task mutation.
type Activity struct {
	ID        int64          `json:"id"`
	TaskID    int64          `json:"task_id"`
	UserID    string         `json:"user_id"`
	Action    ActivityAction `json:"action"`
	Field     string         `json:"field,omitempty"`
	OldValue  string         `json:"old_value,omitempty"`
	NewValue  string         `json:"new_value,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// TaskProjection is the trimmed view of a Task embedded in the chat agent's
// system prompt so the LLM can reference task ids without leaking every field.
type TaskProjection struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	Status   string     `json:"status"` // "active" or "completed"
	Priority Priority   `json:"priority"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

// Project builds the trimmed prompt projection of a Task.
func (t *Task) Project() TaskProjection {
	status := "active"
	if t.IsCompleted {
		status = "completed"
	}
	return TaskProjection{
		ID:       t.ID,
		Title:    t.Title,
		Status:   status,
		Priority: t.Priority,
		DueDate:  t.DueDate,
	}
}
