package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// MemoryStore is an in-process Store for tests and local runs. It keeps one
// lock for the whole store, matching tasks.MemoryStore's granularity — the
// workload here is chat-turn-sized, not high-throughput.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
	messages      map[string][]*models.Message
	now           func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory Conversation Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: map[string]*models.Conversation{},
		messages:      map[string][]*models.Message{},
		now:           time.Now,
	}
}

func (m *MemoryStore) CreateConversation(ctx context.Context, userID, titleHint string) (*models.Conversation, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user_id", "user id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     titleHint,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.conversations[conv.ID] = conv
	clone := *conv
	return &clone, nil
}

func (m *MemoryStore) AppendMessage(ctx context.Context, userID, conversationID string, role models.Role, content string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return nil, apperrors.NotFound("conversation", conversationID)
	}

	now := m.now()
	if prior := m.messages[conversationID]; len(prior) > 0 {
		last := prior[len(prior)-1].CreatedAt
		if !now.After(last) {
			now = last.Add(time.Microsecond)
		}
	}

	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
	}
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	conv.UpdatedAt = now

	clone := *msg
	return &clone, nil
}

func (m *MemoryStore) RecentMessages(ctx context.Context, userID, conversationID string, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryWindow
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	conv, ok := m.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return nil, apperrors.NotFound("conversation", conversationID)
	}

	all := m.messages[conversationID]
	start := 0
	if len(all) > limit {
		start = len(all) - limit
	}
	out := make([]*models.Message, 0, len(all)-start)
	for _, msg := range all[start:] {
		clone := *msg
		out = append(out, &clone)
	}
	return out, nil
}

func (m *MemoryStore) AllMessages(ctx context.Context, userID, conversationID string) ([]*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conv, ok := m.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return nil, apperrors.NotFound("conversation", conversationID)
	}

	all := m.messages[conversationID]
	out := make([]*models.Message, 0, len(all))
	for _, msg := range all {
		clone := *msg
		out = append(out, &clone)
	}
	return out, nil
}

func (m *MemoryStore) ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Conversation
	for _, conv := range m.conversations {
		if conv.UserID != userID {
			continue
		}
		clone := *conv
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return apperrors.NotFound("conversation", conversationID)
	}
	delete(m.conversations, conversationID)
	delete(m.messages, conversationID)
	return nil
}
