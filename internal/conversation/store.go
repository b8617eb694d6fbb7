// Package conversation implements the Conversation Store: persistence for
// chat threads and their messages, independent of the LLM. A conversation is
// a dumb transcript — the Chat Agent is responsible for everything about
// what goes into it.
package conversation

import (
	"context"

	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// DefaultHistoryWindow bounds how many messages RecentMessages returns when
// the caller does not request a specific limit.
const DefaultHistoryWindow = 20

// Store is the Conversation Store contract. Every method is scoped by the
// acting user's id; a conversation or message belonging to a different user
// is reported as apperrors.NotFound, never surfaced, never mutated.
type Store interface {
	// CreateConversation starts a new conversation for userID. titleHint is
	// used verbatim as the initial title when non-empty; callers typically
	// pass models.TitleFromContent(firstMessage).
	CreateConversation(ctx context.Context, userID, titleHint string) (*models.Conversation, error)

	// AppendMessage records a message in conversation id on behalf of
	// userID, stamps it with a monotonically increasing created_at, and
	// updates the conversation's updated_at. Returns the persisted message,
	// including its generated id and timestamp.
	AppendMessage(ctx context.Context, userID, conversationID string, role models.Role, content string) (*models.Message, error)

	// RecentMessages returns the last limit messages of conversation id in
	// ascending time order. limit <= 0 applies DefaultHistoryWindow.
	RecentMessages(ctx context.Context, userID, conversationID string, limit int) ([]*models.Message, error)

	// AllMessages returns conversation id's complete transcript in ascending
	// time order, for get_conversation_messages — unlike RecentMessages it
	// is not bounded to the prompt-building window.
	AllMessages(ctx context.Context, userID, conversationID string) ([]*models.Message, error)

	// ListConversations returns userID's conversations, newest first.
	ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error)

	// DeleteConversation removes conversation id and cascades to its
	// messages.
	DeleteConversation(ctx context.Context, userID, conversationID string) error
}
