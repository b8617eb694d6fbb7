package conversation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
	"github.com/rabiasohail098/todo-chat-agent/internal/retry"
	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore is the production Conversation Store, backed by
// database/sql over lib/pq. It shares tasks.PostgresConfig's pool-sizing
// knobs and internal/retry's transient-failure handling, since both stores
// typically share one database.
type PostgresStore struct {
	db          *sql.DB
	retryConfig retry.Config
}

// NewPostgresStoreFromDSN opens a connection pool against dsn, verifies it
// with a bounded ping, and configures pool limits up front.
func NewPostgresStoreFromDSN(dsn string, config *tasks.PostgresConfig) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	if config == nil {
		config = tasks.DefaultPostgresConfig()
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

func (s *PostgresStore) withRetry(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if _, ok := apperrors.As(err); ok {
			return retry.Permanent(err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return retry.Permanent(err)
		}
		if !isTransientError(err) {
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

func isTransientError(err error) bool {
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
		case "08", "53", "57":
			return true
		}
	}
	return false
}

func (s *PostgresStore) CreateConversation(ctx context.Context, userID, titleHint string) (*models.Conversation, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user_id", "user id is required")
	}

	conv := &models.Conversation{ID: uuid.NewString(), UserID: userID, Title: titleHint}
	err := s.withRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx, `
			INSERT INTO conversations (id, user_id, title, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
			RETURNING created_at, updated_at
		`, conv.ID, conv.UserID, conv.Title).Scan(&conv.CreatedAt, &conv.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, userID, conversationID string, role models.Role, content string) (*models.Message, error) {
	msg := &models.Message{ID: uuid.NewString(), ConversationID: conversationID, Role: role, Content: content}

	err := s.withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var owner string
		err = tx.QueryRowContext(ctx, `SELECT user_id FROM conversations WHERE id = $1 FOR UPDATE`, conversationID).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
			return apperrors.NotFound("conversation", conversationID)
		}
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO conversation_messages (id, conversation_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, now())
			RETURNING created_at
		`, msg.ID, conversationID, string(role), content).Scan(&msg.CreatedAt)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE conversations SET updated_at = $2 WHERE id = $1`, conversationID, msg.CreatedAt); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *PostgresStore) RecentMessages(ctx context.Context, userID, conversationID string, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryWindow
	}

	var out []*models.Message
	err := s.withRetry(ctx, func() error {
		var owner string
		err := s.db.QueryRowContext(ctx, `SELECT user_id FROM conversations WHERE id = $1`, conversationID).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
			return apperrors.NotFound("conversation", conversationID)
		}
		if err != nil {
			return err
		}

		rows, err := s.db.QueryContext(ctx, `
			SELECT id, conversation_id, role, content, created_at
			FROM (
				SELECT id, conversation_id, role, content, created_at
				FROM conversation_messages
				WHERE conversation_id = $1
				ORDER BY created_at DESC
				LIMIT $2
			) recent
			ORDER BY created_at ASC
		`, conversationID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = nil
		for rows.Next() {
			var msg models.Message
			var role string
			if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &msg.CreatedAt); err != nil {
				return err
			}
			msg.Role = models.Role(role)
			out = append(out, &msg)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) AllMessages(ctx context.Context, userID, conversationID string) ([]*models.Message, error) {
	var out []*models.Message
	err := s.withRetry(ctx, func() error {
		var owner string
		err := s.db.QueryRowContext(ctx, `SELECT user_id FROM conversations WHERE id = $1`, conversationID).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
			return apperrors.NotFound("conversation", conversationID)
		}
		if err != nil {
			return err
		}

		rows, err := s.db.QueryContext(ctx, `
			SELECT id, conversation_id, role, content, created_at
			FROM conversation_messages
			WHERE conversation_id = $1
			ORDER BY created_at ASC
		`, conversationID)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = nil
		for rows.Next() {
			var msg models.Message
			var role string
			if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &msg.CreatedAt); err != nil {
				return err
			}
			msg.Role = models.Role(role)
			out = append(out, &msg)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error) {
	var out []*models.Conversation
	err := s.withRetry(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, user_id, title, created_at, updated_at
			FROM conversations
			WHERE user_id = $1
			ORDER BY updated_at DESC
		`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = nil
		for rows.Next() {
			var conv models.Conversation
			if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
				return err
			}
			out = append(out, &conv)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	return s.withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var owner string
		err = tx.QueryRowContext(ctx, `SELECT user_id FROM conversations WHERE id = $1 FOR UPDATE`, conversationID).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
			return apperrors.NotFound("conversation", conversationID)
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_messages WHERE conversation_id = $1`, conversationID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, conversationID); err != nil {
			return err
		}
		return tx.Commit()
	})
}
