package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
	"github.com/rabiasohail098/todo-chat-agent/internal/retry"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// PostgresStore is the production Task Store Adapter, backed by
// database/sql over lib/pq. It issues every query scoped by user_id and
// retries transient connection failures via internal/retry before
// surfacing apperrors.StorageUnavailable.
type PostgresStore struct {
	db          *sql.DB
	retryConfig retry.Config
}

// NewPostgresStoreFromDSN opens a connection pool against dsn and verifies
// it with a bounded ping, and configures pool limits up front rather than
// leaving them at the driver's defaults.
func NewPostgresStoreFromDSN(dsn string, config *PostgresConfig) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	if config == nil {
		config = DefaultPostgresConfig()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{
		db:          db,
		retryConfig: retry.Exponential(3, 50*time.Millisecond, 2*time.Second),
	}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// withRetry runs op, retrying transient connection failures per
// s.retryConfig, and translates a permanently-failed attempt into
// apperrors.StorageUnavailable so callers never see a raw driver error.
func (s *PostgresStore) withRetry(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		// Errors the caller already knows how to handle (an apperrors.Error,
		// or sql.ErrNoRows for a not-found lookup) pass through unchanged;
		// everything else retries only while it looks transient.
		if _, ok := apperrors.As(err); ok {
			return retry.Permanent(err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return retry.Permanent(err)
		}
		if !isTransientPostgresError(err) {
			return retry.Permanent(err)
		}
		return err
	}
	result := retry.Do(ctx, s.retryConfig, wrapped)
	if result.Err == nil {
		return nil
	}
	if _, ok := apperrors.As(result.Err); ok {
		return result.Err
	}
	if errors.Is(result.Err, sql.ErrNoRows) {
		return result.Err
	}
	return apperrors.StorageUnavailable(result.Err)
}

// scanner lets scanTask accept either *sql.Row or *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask reads the common task column set in Postgres column order,
// translating nullable columns through sql.Null* fields rather than
// scanning directly into pointer fields.
func scanTask(s scanner) (*models.Task, error) {
	var (
		task               models.Task
		priority           string
		dueDate            sql.NullTime
		categoryID         sql.NullInt64
		recurrencePattern  string
		nextRecurrenceDate sql.NullTime
		parentRecurrenceID sql.NullInt64
		notes              sql.NullString
	)

	err := s.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description, &task.IsCompleted, &priority, &dueDate,
		&categoryID, &recurrencePattern, &task.RecurrenceInterval, &nextRecurrenceDate,
		&parentRecurrenceID, &notes, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Priority = models.Priority(priority)
	task.RecurrencePattern = models.RecurrencePattern(recurrencePattern)
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	if categoryID.Valid {
		task.CategoryID = &categoryID.Int64
	}
	if nextRecurrenceDate.Valid {
		task.NextRecurrenceDate = &nextRecurrenceDate.Time
	}
	if parentRecurrenceID.Valid {
		task.ParentRecurrenceID = &parentRecurrenceID.Int64
	}
	if notes.Valid {
		task.Notes = notes.String
	}

	return &task, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

const taskColumns = `id, user_id, title, description, is_completed, priority, due_date,
	category_id, recurrence_pattern, recurrence_interval, next_recurrence_date,
	parent_recurrence_id, notes, created_at, updated_at`

func isTransientPostgresError(err error) bool {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "driver: bad connection"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "too many connections"),
		strings.Contains(msg, "EOF"):
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "53", "57", "08": // insufficient resources, operator intervention, connection exception
			return true
		}
	}
	return false
}

func (s *PostgresStore) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
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

	var categoryID *int64
	if input.Category != "" {
		cat, err := s.ResolveCategory(ctx, input.UserID, input.Category)
		if err != nil {
			return nil, err
		}
		categoryID = &cat.ID
	}

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

	var task *models.Task
	err := s.withRetry(ctx, func() error {
		var scanErr error
		task, scanErr = scanTask(s.db.QueryRowContext(ctx, `
			INSERT INTO tasks (user_id, title, description, is_completed, priority, due_date,
				category_id, recurrence_pattern, recurrence_interval, next_recurrence_date,
				created_at, updated_at)
			VALUES ($1,$2,$3,false,$4,$5,$6,$7,$8,$9,$10,$10)
			RETURNING `+taskColumns,
			input.UserID, title, input.Description, priority, nullableTime(input.DueDate),
			nullableInt64(categoryID), string(pattern), interval, nullableTime(nextRecurrence), now,
		))
		return scanErr
	})
	if err != nil {
		return nil, err
	}

	if len(input.Tags) > 0 {
		if err := s.attachTags(ctx, task.ID, input.UserID, input.Tags); err != nil {
			return nil, err
		}
		task.Tags = normaliseAll(input.Tags)
	}

	if err := s.recordActivity(ctx, task.ID, input.UserID, models.ActivityCreated, "", "", ""); err != nil {
		return nil, err
	}

	return task, nil
}

func normaliseAll(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		norm := NormaliseTagName(n)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

func (s *PostgresStore) attachTags(ctx context.Context, taskID int64, userID string, names []string) error {
	tags, err := s.ResolveTags(ctx, userID, names)
	if err != nil {
		return err
	}
	return s.withRetry(ctx, func() error {
		for _, tag := range tags {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO task_tags (task_id, tag_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
				taskID, tag.ID); err != nil {
				return fmt.Errorf("attach tag: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) recordActivity(ctx context.Context, taskID int64, userID string, action models.ActivityAction, field, oldValue, newValue string) error {
	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO task_activity (task_id, user_id, action, field, old_value, new_value, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			taskID, userID, string(action), field, oldValue, newValue, time.Now())
		if err != nil {
			return fmt.Errorf("record activity: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) GetTask(ctx context.Context, userID string, taskID int64) (*models.Task, error) {
	var task *models.Task
	err := s.withRetry(ctx, func() error {
		var scanErr error
		task, scanErr = scanTask(s.db.QueryRowContext(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID))
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("task", taskID)
	}
	if err != nil {
		return nil, err
	}

	tags, err := s.tagsForTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	task.Tags = tags
	return task, nil
}

func (s *PostgresStore) tagsForTask(ctx context.Context, taskID int64) ([]string, error) {
	var tags []string
	err := s.withRetry(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT t.name FROM tags t
			JOIN task_tags tt ON tt.tag_id = t.id
			WHERE tt.task_id = $1 ORDER BY t.name`, taskID)
		if err != nil {
			return fmt.Errorf("list task tags: %w", err)
		}
		defer rows.Close()
		tags = nil
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return fmt.Errorf("scan tag: %w", err)
			}
			tags = append(tags, name)
		}
		return rows.Err()
	})
	return tags, err
}

func (s *PostgresStore) ListTasks(ctx context.Context, userID string, filter ListFilter) ([]*models.Task, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var b strings.Builder
	args := []any{userID}
	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)

	switch filter.Status {
	case StatusActive:
		b.WriteString(" AND is_completed = false")
	case StatusCompleted:
		b.WriteString(" AND is_completed = true")
	}

	if filter.Priority != "" {
		args = append(args, filter.Priority)
		b.WriteString(fmt.Sprintf(" AND priority = $%d", len(args)))
	}

	if filter.Category != "" {
		categoryID, err := s.findCategoryID(ctx, userID, filter.Category)
		if err != nil {
			return nil, err
		}
		if categoryID == nil {
			b.WriteString(" AND category_id IS NULL")
		} else {
			args = append(args, *categoryID)
			b.WriteString(fmt.Sprintf(" AND category_id = $%d", len(args)))
		}
	}

	switch filter.DueFilter {
	case DueFilterToday:
		b.WriteString(" AND due_date::date = now()::date")
	case DueFilterThisWeek:
		b.WriteString(" AND due_date >= now() AND due_date < now() + interval '7 days'")
	case DueFilterOverdue:
		b.WriteString(" AND due_date < now() AND is_completed = false")
	}

	if filter.Search != "" {
		args = append(args, filter.Search)
		b.WriteString(fmt.Sprintf(
			` AND (setweight(to_tsvector('english', title), 'A') ||
			       setweight(to_tsvector('english', coalesce(description, '')), 'B'))
			      @@ plainto_tsquery('english', $%d)`, len(args)))
	}

	switch filter.Sort {
	case SortByPriority:
		b.WriteString(` ORDER BY CASE priority
			WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END`)
	case SortByDueDate:
		b.WriteString(" ORDER BY due_date IS NULL, due_date ASC")
	default:
		b.WriteString(" ORDER BY created_at DESC")
	}

	args = append(args, limit)
	b.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))

	var tasks []*models.Task
	err := s.withRetry(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, b.String(), args...)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		defer rows.Close()

		tasks = nil
		for rows.Next() {
			task, err := scanTask(rows)
			if err != nil {
				return fmt.Errorf("scan task: %w", err)
			}
			tasks = append(tasks, task)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	if len(filter.Tags) > 0 {
		tasks, err = s.filterByTags(ctx, tasks, filter.Tags)
		if err != nil {
			return nil, err
		}
	}

	for _, t := range tasks {
		tags, err := s.tagsForTask(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Tags = tags
	}

	return tasks, nil
}

func (s *PostgresStore) filterByTags(ctx context.Context, tasks []*models.Task, want []string) ([]*models.Task, error) {
	normWant := normaliseAll(want)
	var out []*models.Task
	for _, t := range tasks {
		tags, err := s.tagsForTask(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		have := make(map[string]bool, len(tags))
		for _, tag := range tags {
			have[tag] = true
		}
		matchesAll := true
		for _, w := range normWant {
			if !have[w] {
				matchesAll = false
				break
			}
		}
		if matchesAll {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, userID string, taskID int64, fields UpdateTaskFields) (*models.Task, error) {
	existing, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return nil, apperrors.InvalidInput("title", "must not be empty")
		}
		if len(title) > models.MaxTitleLength {
			return nil, apperrors.InvalidInput("title", "must be at most 200 characters")
		}
		existing.Title = title
	}
	if fields.Description != nil {
		existing.Description = *fields.Description
	}
	if fields.IsCompleted != nil {
		existing.IsCompleted = *fields.IsCompleted
	}
	if fields.Priority != nil {
		if !models.ValidPriority(*fields.Priority) {
			return nil, apperrors.InvalidInput("priority", "unrecognised priority")
		}
		existing.Priority = *fields.Priority
	}
	if fields.DueDate != nil {
		existing.DueDate = fields.DueDate
	}
	if fields.Category != nil {
		cat, err := s.ResolveCategory(ctx, userID, *fields.Category)
		if err != nil {
			return nil, err
		}
		existing.CategoryID = &cat.ID
	}

	existing.UpdatedAt = time.Now()

	err = s.withRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE tasks SET title=$1, description=$2, is_completed=$3, priority=$4, due_date=$5,
				category_id=$6, updated_at=$7
			WHERE id=$8 AND user_id=$9`,
			existing.Title, existing.Description, existing.IsCompleted, existing.Priority, nullableTime(existing.DueDate),
			nullableInt64(existing.CategoryID), existing.UpdatedAt, existing.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update task rows affected: %w", err)
		}
		if rows == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("task", taskID)
	}
	if err != nil {
		return nil, err
	}

	if fields.Tags != nil {
		if err := s.replaceTags(ctx, taskID, userID, fields.Tags); err != nil {
			return nil, err
		}
		existing.Tags = normaliseAll(fields.Tags)
	}

	if err := s.recordActivity(ctx, taskID, userID, models.ActivityUpdated, "", "", ""); err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *PostgresStore) replaceTags(ctx context.Context, taskID int64, userID string, names []string) error {
	if err := s.withRetry(ctx, func() error {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
			return fmt.Errorf("clear task tags: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	return s.attachTags(ctx, taskID, userID, names)
}

func (s *PostgresStore) SetCompleted(ctx context.Context, userID string, taskID int64, completed bool) (*models.Task, error) {
	action := models.ActivityUncompleted
	if completed {
		action = models.ActivityCompleted
	}

	err := s.withRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE tasks SET is_completed = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
			completed, time.Now(), taskID, userID)
		if err != nil {
			return fmt.Errorf("set completed: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("set completed rows affected: %w", err)
		}
		if rows == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("task", taskID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.recordActivity(ctx, taskID, userID, action, "is_completed", "", ""); err != nil {
		return nil, err
	}

	return s.GetTask(ctx, userID, taskID)
}

func (s *PostgresStore) DeleteTask(ctx context.Context, userID string, taskID int64) error {
	return s.withRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete task rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("task", taskID)
		}
		return nil
	})
}

func (s *PostgresStore) RecentTasks(ctx context.Context, userID string, limit int) ([]TaskProjection, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var out []TaskProjection
	err := s.withRetry(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, title, is_completed, priority, due_date FROM tasks
			WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
		if err != nil {
			return fmt.Errorf("recent tasks: %w", err)
		}
		defer rows.Close()

		out = nil
		for rows.Next() {
			var id int64
			var title string
			var completed bool
			var priority models.Priority
			var due *time.Time
			if err := rows.Scan(&id, &title, &completed, &priority, &due); err != nil {
				return fmt.Errorf("scan recent task: %w", err)
			}
			status := "active"
			if completed {
				status = "completed"
			}
			out = append(out, TaskProjection{ID: id, Title: title, Status: status, Priority: priority, DueDate: due})
		}
		return rows.Err()
	})
	return out, err
}

func (s *PostgresStore) DueTemplates(ctx context.Context, asOf time.Time, limit int) ([]*models.Task, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var tasks []*models.Task
	err := s.withRetry(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT `+taskColumns+`
			FROM tasks
			WHERE recurrence_pattern != 'none' AND next_recurrence_date <= $1
			ORDER BY id LIMIT $2`, asOf, limit)
		if err != nil {
			return fmt.Errorf("due templates: %w", err)
		}
		defer rows.Close()

		tasks = nil
		for rows.Next() {
			task, err := scanTask(rows)
			if err != nil {
				return fmt.Errorf("scan due template: %w", err)
			}
			tasks = append(tasks, task)
		}
		return rows.Err()
	})
	return tasks, err
}

// MaterialiseOccurrence inserts the next occurrence of template and advances
// the template's next_recurrence_date in a single transaction, so a crash
// between the two writes can never leave a template stuck without its next
// scheduled date.
func (s *PostgresStore) MaterialiseOccurrence(ctx context.Context, template *models.Task, nextOccurrence time.Time) error {
	var occurrenceID int64
	err := s.withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin materialise tx: %w", err)
		}
		defer tx.Rollback()

		now := time.Now()
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO tasks (user_id, title, description, is_completed, priority, due_date,
				category_id, recurrence_pattern, recurrence_interval, parent_recurrence_id,
				created_at, updated_at)
			VALUES ($1,$2,$3,false,$4,$5,$6,'none',1,$7,$8,$8)
			RETURNING id`,
			template.UserID, template.Title, template.Description, template.Priority, nullableTime(template.DueDate),
			nullableInt64(template.CategoryID), template.ID, now,
		).Scan(&occurrenceID); err != nil {
			return fmt.Errorf("insert occurrence: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET next_recurrence_date = $1, updated_at = $2 WHERE id = $3`,
			nextOccurrence, now, template.ID); err != nil {
			return fmt.Errorf("advance template: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit materialise tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(template.Tags) > 0 {
		if err := s.attachTags(ctx, occurrenceID, template.UserID, template.Tags); err != nil {
			return err
		}
	}
	return nil
}

// findCategoryID looks up an existing category by name, scoped to userID,
// without creating one. Returns (nil, nil) when no category by that name
// exists, so a list_tasks filter on an unknown category name narrows to
// "has no category" rather than silently matching every task.
func (s *PostgresStore) findCategoryID(ctx context.Context, userID, name string) (*int64, error) {
	name = strings.TrimSpace(name)
	var id int64
	err := s.withRetry(ctx, func() error {
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM categories WHERE user_id = $1 AND lower(name) = lower($2)`,
			userID, name,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lookup category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}
	return &id, nil
}

func (s *PostgresStore) ResolveCategory(ctx context.Context, userID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	var cat models.Category
	var color, icon sql.NullString
	err := s.withRetry(ctx, func() error {
		err := s.db.QueryRowContext(ctx,
			`SELECT id, user_id, name, color, icon FROM categories WHERE user_id = $1 AND lower(name) = lower($2)`,
			userID, name,
		).Scan(&cat.ID, &cat.UserID, &cat.Name, &color, &icon)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup category: %w", err)
		}

		return s.db.QueryRowContext(ctx,
			`INSERT INTO categories (user_id, name) VALUES ($1,$2)
			 ON CONFLICT (user_id, lower(name)) DO UPDATE SET name = categories.name
			 RETURNING id, user_id, name, color, icon`,
			userID, name,
		).Scan(&cat.ID, &cat.UserID, &cat.Name, &color, &icon)
	})
	if err != nil {
		return nil, err
	}
	cat.Color = color.String
	cat.Icon = icon.String
	return &cat, nil
}

func (s *PostgresStore) ResolveTags(ctx context.Context, userID string, names []string) ([]*models.Tag, error) {
	var result []*models.Tag
	for _, raw := range names {
		normalised := NormaliseTagName(raw)
		if normalised == "" {
			continue
		}
		var tag models.Tag
		err := s.withRetry(ctx, func() error {
			return s.db.QueryRowContext(ctx,
				`INSERT INTO tags (user_id, name) VALUES ($1,$2)
				 ON CONFLICT (user_id, name) DO UPDATE SET name = tags.name
				 RETURNING id, user_id, name`,
				userID, normalised,
			).Scan(&tag.ID, &tag.UserID, &tag.Name)
		})
		if err != nil {
			return nil, err
		}
		result = append(result, &tag)
	}
	return result, nil
}
