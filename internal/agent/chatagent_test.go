package agent_test

import (
	"context"
	"testing"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent"
	"github.com/rabiasohail098/todo-chat-agent/internal/agent/providers"
	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
	"github.com/rabiasohail098/todo-chat-agent/internal/conversation"
	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
	"github.com/rabiasohail098/todo-chat-agent/internal/tools"
)

type fakeProvider struct {
	text string
	err  error
	n    int
}

func (f *fakeProvider) Name() string               { return "fake" }
func (f *fakeProvider) Models() []providers.Model  { return nil }
func (f *fakeProvider) Complete(ctx context.Context, req providers.CompletionRequest) (providers.CompletionResponse, error) {
	f.n++
	if f.err != nil {
		return providers.CompletionResponse{}, f.err
	}
	return providers.CompletionResponse{Text: f.text}, nil
}

func newRegistry(store tasks.Store) *agent.ToolRegistry {
	reg := agent.NewToolRegistry()
	reg.Register(tools.NewCreateTaskTool(store))
	reg.Register(tools.NewListTasksTool(store))
	reg.Register(tools.NewCompleteTaskTool(store))
	return reg
}

func TestChatAgent_PlainReplyPersistsBothTurns(t *testing.T) {
	taskStore := tasks.NewMemoryStore()
	convStore := conversation.NewMemoryStore()
	provider := &fakeProvider{text: "Sure, I can help with that."}

	a := agent.NewChatAgent(provider, taskStore, convStore, newRegistry(taskStore), agent.ChatAgentConfig{})

	resp, err := a.Handle(context.Background(), agent.ChatRequest{
		UserID:   "u1",
		Message:  "hello there",
		Language: agent.LanguageEnglish,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.AssistantText != "Sure, I can help with that." {
		t.Errorf("assistant text = %q", resp.AssistantText)
	}
	if resp.PerformedAction != "" {
		t.Errorf("expected no action performed, got %q", resp.PerformedAction)
	}
	if resp.ConversationID == "" {
		t.Fatal("expected a conversation id to be created")
	}

	msgs, err := convStore.RecentMessages(context.Background(), "u1", resp.ConversationID, 10)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(msgs))
	}
	if msgs[0].Content != "hello there" || msgs[1].Content != "Sure, I can help with that." {
		t.Errorf("unexpected persisted messages: %+v", msgs)
	}
}

func TestChatAgent_DispatchesActionAndComposesReply(t *testing.T) {
	taskStore := tasks.NewMemoryStore()
	convStore := conversation.NewMemoryStore()
	provider := &fakeProvider{
		text: `Sure thing! {"action": "create_task", "arguments": {"title": "Buy milk"}, "reply": "Done, I added it."}`,
	}

	a := agent.NewChatAgent(provider, taskStore, convStore, newRegistry(taskStore), agent.ChatAgentConfig{})

	resp, err := a.Handle(context.Background(), agent.ChatRequest{
		UserID:  "u1",
		Message: "remind me to buy milk",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.PerformedAction != "create_task" {
		t.Errorf("performed action = %q, want create_task", resp.PerformedAction)
	}
	if resp.AssistantText == "" {
		t.Fatal("expected a non-empty composed reply")
	}

	list, err := taskStore.ListTasks(context.Background(), "u1", tasks.ListFilter{Status: tasks.StatusAll})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Buy milk" {
		t.Fatalf("expected the task to be created, got %+v", list)
	}
}

func TestChatAgent_UnknownActionFallsBackToReply(t *testing.T) {
	taskStore := tasks.NewMemoryStore()
	convStore := conversation.NewMemoryStore()
	provider := &fakeProvider{
		text: `{"action": "launch_rocket", "arguments": {}, "reply": "I can't do that, but I can manage your tasks."}`,
	}

	a := agent.NewChatAgent(provider, taskStore, convStore, newRegistry(taskStore), agent.ChatAgentConfig{})

	resp, err := a.Handle(context.Background(), agent.ChatRequest{UserID: "u1", Message: "launch a rocket"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.AssistantText != "I can't do that, but I can manage your tasks." {
		t.Errorf("assistant text = %q", resp.AssistantText)
	}
	if resp.PerformedAction != "" {
		t.Errorf("expected no action, got %q", resp.PerformedAction)
	}
}

func TestChatAgent_LLMUnavailableComposesApologyWithoutLosingUserMessage(t *testing.T) {
	taskStore := tasks.NewMemoryStore()
	convStore := conversation.NewMemoryStore()
	provider := &fakeProvider{err: apperrors.LLMUnavailable(nil)}

	a := agent.NewChatAgent(provider, taskStore, convStore, newRegistry(taskStore), agent.ChatAgentConfig{})

	resp, err := a.Handle(context.Background(), agent.ChatRequest{UserID: "u1", Message: "hi"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.AssistantText == "" {
		t.Fatal("expected a non-empty apology")
	}

	msgs, err := convStore.RecentMessages(context.Background(), "u1", resp.ConversationID, 10)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected the user message to survive alongside the apology, got %d messages", len(msgs))
	}
	if msgs[0].Content != "hi" {
		t.Errorf("user message = %q, want it preserved", msgs[0].Content)
	}
}

func TestChatAgent_RejectsEmptyMessageWithoutTouchingStorage(t *testing.T) {
	taskStore := tasks.NewMemoryStore()
	convStore := conversation.NewMemoryStore()
	provider := &fakeProvider{text: "unused"}

	a := agent.NewChatAgent(provider, taskStore, convStore, newRegistry(taskStore), agent.ChatAgentConfig{})

	_, err := a.Handle(context.Background(), agent.ChatRequest{UserID: "u1", Message: "   "})
	if !apperrors.Is(err, apperrors.KindInvalidInput) {
		t.Fatalf("expected KindInvalidInput, got %v", err)
	}
	if provider.n != 0 {
		t.Errorf("expected no LLM call for a rejected request, got %d", provider.n)
	}
}

func TestChatAgent_ContinuesExistingConversation(t *testing.T) {
	taskStore := tasks.NewMemoryStore()
	convStore := conversation.NewMemoryStore()
	provider := &fakeProvider{text: "got it"}

	a := agent.NewChatAgent(provider, taskStore, convStore, newRegistry(taskStore), agent.ChatAgentConfig{})

	first, err := a.Handle(context.Background(), agent.ChatRequest{UserID: "u1", Message: "first message"})
	if err != nil {
		t.Fatalf("first Handle: %v", err)
	}

	second, err := a.Handle(context.Background(), agent.ChatRequest{
		UserID:         "u1",
		ConversationID: first.ConversationID,
		Message:        "second message",
	})
	if err != nil {
		t.Fatalf("second Handle: %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Fatalf("expected the conversation id to be reused, got %q vs %q", second.ConversationID, first.ConversationID)
	}

	msgs, err := convStore.RecentMessages(context.Background(), "u1", first.ConversationID, 10)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages across both turns, got %d", len(msgs))
	}
}
