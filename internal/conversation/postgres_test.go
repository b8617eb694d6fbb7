package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
	"github.com/rabiasohail098/todo-chat-agent/internal/retry"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

func setupMockStore(t *testing.T) (sqlmock.Sqlmock, *PostgresStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := &PostgresStore{
		db:          db,
		retryConfig: retry.Exponential(2, time.Millisecond, 5*time.Millisecond),
	}
	return mock, store
}

func TestPostgresStore_CreateConversation_Success(t *testing.T) {
	mock, store := setupMockStore(t)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO conversations").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	conv, err := store.CreateConversation(context.Background(), "u1", "Buy milk")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if conv.UserID != "u1" || conv.Title != "Buy milk" || conv.ID == "" {
		t.Errorf("unexpected conversation: %+v", conv)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_CreateConversation_EmptyUserRejectedWithoutQuery(t *testing.T) {
	mock, store := setupMockStore(t)

	_, err := store.CreateConversation(context.Background(), "", "x")
	if !apperrors.Is(err, apperrors.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no query should have been issued: %v", err)
	}
}

func TestPostgresStore_CreateConversation_PermanentDBErrorWrapsStorageUnavailable(t *testing.T) {
	mock, store := setupMockStore(t)

	mock.ExpectQuery("INSERT INTO conversations").
		WillReturnError(errors.New("permission denied for table conversations"))

	_, err := store.CreateConversation(context.Background(), "u1", "x")
	if !apperrors.Is(err, apperrors.KindStorageUnavailable) {
		t.Fatalf("expected KindStorageUnavailable, got %v", err)
	}
}

func TestPostgresStore_AppendMessage_CrossTenantIsNotFound(t *testing.T) {
	mock, store := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM conversations").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("owner"))
	mock.ExpectRollback()

	_, err := store.AppendMessage(context.Background(), "intruder", "c1", models.RoleUser, "hi")
	if !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestPostgresStore_AppendMessage_Success(t *testing.T) {
	mock, store := setupMockStore(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM conversations").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectQuery("INSERT INTO conversation_messages").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectExec("UPDATE conversations SET updated_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	msg, err := store.AppendMessage(context.Background(), "u1", "c1", models.RoleAssistant, "hello")
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if msg.Role != models.RoleAssistant || msg.Content != "hello" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_DeleteConversation_CascadesToMessages(t *testing.T) {
	mock, store := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM conversations").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectExec("DELETE FROM conversation_messages").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM conversations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.DeleteConversation(context.Background(), "u1", "c1"); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
