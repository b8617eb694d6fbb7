// Package chatservice exposes the core's four upstream operations
// (handle_chat_request, list_conversations, get_conversation_messages,
// delete_conversation) as plain Go methods, ready for an out-of-scope HTTP
// layer to wire up. The core assumes nothing about HTTP.
package chatservice

import (
	"context"
	"strings"
	"time"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent"
	"github.com/rabiasohail098/todo-chat-agent/internal/agent/providers"
	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
	"github.com/rabiasohail098/todo-chat-agent/internal/conversation"
	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// Service wires the Chat Agent's collaborators and exposes the four
// operations a framing layer calls. Unlike a ChatAgent, a Service is
// long-lived — constructed once at startup and shared across requests,
// since its collaborators are themselves safe for concurrent use; it
// builds a fresh *agent.ChatAgent for every call.
type Service struct {
	provider      providers.Provider
	tasks         tasks.Store
	conversations conversation.Store
	tools         *agent.ToolRegistry
	agentConfig   agent.ChatAgentConfig
}

// New builds a Service from its collaborators.
func New(provider providers.Provider, taskStore tasks.Store, conversationStore conversation.Store, tools *agent.ToolRegistry, agentConfig agent.ChatAgentConfig) *Service {
	return &Service{
		provider:      provider,
		tasks:         taskStore,
		conversations: conversationStore,
		tools:         tools,
		agentConfig:   agentConfig,
	}
}

// ConversationSummary is the trimmed view list_conversations returns.
type ConversationSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"`
}

// HandleChatRequest runs one chat turn. See agent.ChatAgent.Handle for the
// full per-turn algorithm; this is the stable entry point a framing layer
// calls per the spec's handle_chat_request contract.
func (s *Service) HandleChatRequest(ctx context.Context, userID, conversationID, message string, language agent.LanguageCode) (agent.ChatResponse, error) {
	chatAgent := agent.NewChatAgent(s.provider, s.tasks, s.conversations, s.tools, s.agentConfig)
	return chatAgent.Handle(ctx, agent.ChatRequest{
		UserID:         userID,
		ConversationID: conversationID,
		Message:        message,
		Language:       language,
	})
}

// ListConversations returns userID's conversations, newest first.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.InvalidInput("user_id", "user id is required")
	}
	convs, err := s.conversations.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, ConversationSummary{
			ID:        c.ID,
			Title:     c.Title,
			UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// GetConversationMessages returns conversationID's full transcript in
// ascending time order, or NotFound if it does not belong to userID.
func (s *Service) GetConversationMessages(ctx context.Context, userID, conversationID string) ([]*models.Message, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.InvalidInput("user_id", "user id is required")
	}
	if strings.TrimSpace(conversationID) == "" {
		return nil, apperrors.InvalidInput("conversation_id", "conversation id is required")
	}
	return s.conversations.AllMessages(ctx, userID, conversationID)
}

// DeleteConversation removes conversationID and its messages.
func (s *Service) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.InvalidInput("user_id", "user id is required")
	}
	return s.conversations.DeleteConversation(ctx, userID, conversationID)
}
