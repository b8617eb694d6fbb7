package tasks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// MemoryStore is an in-memory Store, shaped after a typical RWMutex+map
// storage.MemoryAgentStore shape (mutex-guarded maps, no persistence),
// used for tests and local development without a Postgres instance.
type MemoryStore struct {
	mu sync.RWMutex

	nextTaskID     int64
	nextCategoryID int64
	nextTagID      int64

	tasks      map[int64]*models.Task
	categories map[int64]*models.Category
	tags       map[int64]*models.Tag
}

// NewMemoryStore creates an empty in-memory task store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:      make(map[int64]*models.Task),
		categories: make(map[int64]*models.Category),
		tags:       make(map[int64]*models.Tag),
	}
}

func (s *MemoryStore) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.InvalidInput("title", "must not be empty")
	}
	if len(title) > models.MaxTitleLength {
		return nil, apperrors.InvalidInput("title", "must be at most 200 characters")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.DefaultPriority
	}
	if !models.ValidPriority(priority) {
		return nil, apperrors.InvalidInput("priority", "unrecognised priority")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var categoryID *int64
	if input.Category != "" {
		cat := s.resolveCategoryLocked(input.UserID, input.Category)
		categoryID = &cat.ID
	}

	tagNames := s.resolveTagsLocked(input.UserID, input.Tags)

	now := time.Now()
	pattern := models.RecurrenceNone
	interval := 1
	var nextRecurrence *time.Time
	if input.Recurrence != nil && *input.Recurrence != models.RecurrenceNone {
		pattern = *input.Recurrence
		if input.RecurrenceN > 0 {
			interval = input.RecurrenceN
		}
		next := NextRecurrence(pattern, interval, now)
		nextRecurrence = &next
	}

	s.nextTaskID++
	task := &models.Task{
		ID:                 s.nextTaskID,
		UserID:             input.UserID,
		Title:              title,
		Description:        input.Description,
		Priority:           priority,
		DueDate:            input.DueDate,
		CategoryID:         categoryID,
		Tags:               tagNames,
		RecurrencePattern:  pattern,
		RecurrenceInterval: interval,
		NextRecurrenceDate: nextRecurrence,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.tasks[task.ID] = task

	return cloneTask(task), nil
}

func (s *MemoryStore) GetTask(ctx context.Context, userID string, taskID int64) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, apperrors.NotFound("task", taskID)
	}
	return cloneTask(task), nil
}

func (s *MemoryStore) ListTasks(ctx context.Context, userID string, filter ListFilter) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var categoryID int64
	var categoryExists bool
	if filter.Category != "" {
		categoryID, categoryExists = s.findCategoryIDLocked(userID, filter.Category)
	}

	var matched []*models.Task
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Category != "" {
			if !categoryExists {
				if task.CategoryID != nil {
					continue
				}
			} else if task.CategoryID == nil || *task.CategoryID != categoryID {
				continue
			}
		}
		if !matchesFilter(task, filter) {
			continue
		}
		matched = append(matched, task)
	}

	sortTasks(matched, filter.Sort)

	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*models.Task, len(matched))
	for i, t := range matched {
		out[i] = cloneTask(t)
	}
	return out, nil
}

func matchesFilter(task *models.Task, filter ListFilter) bool {
	switch filter.Status {
	case StatusActive:
		if task.IsCompleted {
			return false
		}
	case StatusCompleted:
		if !task.IsCompleted {
			return false
		}
	}

	if filter.Priority != "" && task.Priority != filter.Priority {
		return false
	}

	if len(filter.Tags) > 0 {
		want := make(map[string]bool, len(filter.Tags))
		for _, t := range filter.Tags {
			want[NormaliseTagName(t)] = true
		}
		have := make(map[string]bool, len(task.Tags))
		for _, t := range task.Tags {
			have[t] = true
		}
		for t := range want {
			if !have[t] {
				return false
			}
		}
	}

	switch filter.DueFilter {
	case DueFilterToday:
		if task.DueDate == nil || !isSameDay(*task.DueDate, time.Now()) {
			return false
		}
	case DueFilterThisWeek:
		if task.DueDate == nil || !isWithinNextDays(*task.DueDate, 7) {
			return false
		}
	case DueFilterOverdue:
		if task.DueDate == nil || !task.DueDate.Before(time.Now()) || task.IsCompleted {
			return false
		}
	}

	if filter.Search != "" {
		q := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(task.Title), q) && !strings.Contains(strings.ToLower(task.Description), q) {
			return false
		}
	}

	return true
}

func isSameDay(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	return ya == yb && ma == mb && da == db
}

func isWithinNextDays(t time.Time, days int) bool {
	now := time.Now()
	return !t.Before(now) && t.Before(now.AddDate(0, 0, days))
}

var priorityRank = map[models.Priority]int{
	models.PriorityCritical: 0,
	models.PriorityHigh:     1,
	models.PriorityMedium:   2,
	models.PriorityLow:      3,
}

func sortTasks(tasks []*models.Task, sortBy SortBy) {
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch sortBy {
		case SortByPriority:
			if priorityRank[a.Priority] != priorityRank[b.Priority] {
				return priorityRank[a.Priority] < priorityRank[b.Priority]
			}
		case SortByDueDate:
			ad, bd := a.DueDate, b.DueDate
			if (ad == nil) != (bd == nil) {
				return bd == nil // tasks with a due date sort before those without
			}
			if ad != nil && bd != nil && !ad.Equal(*bd) {
				return ad.Before(*bd)
			}
		}
		// default/tie-break: created_at desc
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func (s *MemoryStore) UpdateTask(ctx context.Context, userID string, taskID int64, fields UpdateTaskFields) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, apperrors.NotFound("task", taskID)
	}

	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return nil, apperrors.InvalidInput("title", "must not be empty")
		}
		if len(title) > models.MaxTitleLength {
			return nil, apperrors.InvalidInput("title", "must be at most 200 characters")
		}
		task.Title = title
	}
	if fields.Description != nil {
		task.Description = *fields.Description
	}
	if fields.IsCompleted != nil {
		task.IsCompleted = *fields.IsCompleted
	}
	if fields.Priority != nil {
		if !models.ValidPriority(*fields.Priority) {
			return nil, apperrors.InvalidInput("priority", "unrecognised priority")
		}
		task.Priority = *fields.Priority
	}
	if fields.DueDate != nil {
		task.DueDate = fields.DueDate
	}
	if fields.Category != nil {
		cat := s.resolveCategoryLocked(userID, *fields.Category)
		task.CategoryID = &cat.ID
	}
	if fields.Tags != nil {
		task.Tags = s.resolveTagsLocked(userID, fields.Tags)
	}

	task.UpdatedAt = time.Now()
	return cloneTask(task), nil
}

func (s *MemoryStore) SetCompleted(ctx context.Context, userID string, taskID int64, completed bool) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, apperrors.NotFound("task", taskID)
	}
	task.IsCompleted = completed
	task.UpdatedAt = time.Now()
	return cloneTask(task), nil
}

func (s *MemoryStore) DeleteTask(ctx context.Context, userID string, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return apperrors.NotFound("task", taskID)
	}
	delete(s.tasks, taskID)
	return nil
}

func (s *MemoryStore) RecentTasks(ctx context.Context, userID string, limit int) ([]TaskProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	var owned []*models.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			owned = append(owned, t)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	if len(owned) > limit {
		owned = owned[:limit]
	}

	out := make([]TaskProjection, len(owned))
	for i, t := range owned {
		out[i] = t.Project()
	}
	return out, nil
}

func (s *MemoryStore) DueTemplates(ctx context.Context, asOf time.Time, limit int) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*models.Task
	for _, t := range s.tasks {
		if t.IsTemplate() && t.NextRecurrenceDate != nil && !t.NextRecurrenceDate.After(asOf) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	out := make([]*models.Task, len(due))
	for i, t := range due {
		out[i] = cloneTask(t)
	}
	return out, nil
}

func (s *MemoryStore) MaterialiseOccurrence(ctx context.Context, template *models.Task, nextOccurrence time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[template.ID]
	if !ok {
		return apperrors.NotFound("task", template.ID)
	}

	now := time.Now()
	s.nextTaskID++
	occurrence := &models.Task{
		ID:                 s.nextTaskID,
		UserID:             existing.UserID,
		Title:              existing.Title,
		Description:        existing.Description,
		Priority:           existing.Priority,
		CategoryID:         existing.CategoryID,
		Tags:               append([]string(nil), existing.Tags...),
		RecurrencePattern:  models.RecurrenceNone,
		RecurrenceInterval: 1,
		ParentRecurrenceID: &existing.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.tasks[occurrence.ID] = occurrence

	existing.NextRecurrenceDate = &nextOccurrence
	existing.UpdatedAt = now

	return nil
}

func (s *MemoryStore) ResolveCategory(ctx context.Context, userID, name string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveCategoryLocked(userID, name), nil
}

// findCategoryIDLocked looks up an existing category by name, scoped to
// userID, without creating one. The caller must hold s.mu. Returns
// (0, false) when no category by that name exists, so a list_tasks filter
// on an unknown category name narrows to "has no category" rather than
// silently matching every task.
func (s *MemoryStore) findCategoryIDLocked(userID, name string) (int64, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, c := range s.categories {
		if c.UserID == userID && strings.ToLower(c.Name) == lower {
			return c.ID, true
		}
	}
	return 0, false
}

func (s *MemoryStore) resolveCategoryLocked(userID, name string) *models.Category {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, c := range s.categories {
		if c.UserID == userID && strings.ToLower(c.Name) == lower {
			return c
		}
	}
	s.nextCategoryID++
	cat := &models.Category{ID: s.nextCategoryID, UserID: userID, Name: strings.TrimSpace(name)}
	s.categories[cat.ID] = cat
	return cat
}

func (s *MemoryStore) ResolveTags(ctx context.Context, userID string, names []string) ([]*models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Tag
	for _, raw := range names {
		normalised := NormaliseTagName(raw)
		if normalised == "" {
			continue
		}
		result = append(result, s.resolveTagLocked(userID, normalised))
	}
	return result, nil
}

func (s *MemoryStore) resolveTagsLocked(userID string, names []string) []string {
	var out []string
	for _, raw := range names {
		normalised := NormaliseTagName(raw)
		if normalised == "" {
			continue
		}
		s.resolveTagLocked(userID, normalised)
		out = append(out, normalised)
	}
	return out
}

func (s *MemoryStore) resolveTagLocked(userID, normalisedName string) *models.Tag {
	for _, t := range s.tags {
		if t.UserID == userID && t.Name == normalisedName {
			return t
		}
	}
	s.nextTagID++
	tag := &models.Tag{ID: s.nextTagID, UserID: userID, Name: normalisedName}
	s.tags[tag.ID] = tag
	return tag
}

func cloneTask(t *models.Task) *models.Task {
	clone := *t
	clone.Tags = append([]string(nil), t.Tags...)
	return &clone
}
