package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent/providers"
	"github.com/rabiasohail098/todo-chat-agent/internal/apperrors"
	"github.com/rabiasohail098/todo-chat-agent/internal/conversation"
	"github.com/rabiasohail098/todo-chat-agent/internal/observability"
	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// DefaultHistoryWindow and DefaultRecentTasksWindow bound what gets embedded
// in the system prompt when a ChatAgentConfig does not override them.
const (
	DefaultHistoryWindow     = 20
	DefaultRecentTasksWindow = 20
)

// ChatAgentConfig configures a ChatAgent. Every field has a zero-value
// default applied by withDefaults, mirroring the rest of this package's
// configuration structs.
type ChatAgentConfig struct {
	Model             string
	MaxTokens         int
	HistoryWindow     int
	RecentTasksWindow int
	DefaultLanguage   LanguageCode
	Logger            *slog.Logger

	// Metrics, when set, records turn/LLM/tool outcomes. Left nil in tests.
	Metrics *observability.Metrics
}

func (c ChatAgentConfig) withDefaults() ChatAgentConfig {
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = DefaultHistoryWindow
	}
	if c.RecentTasksWindow <= 0 {
		c.RecentTasksWindow = DefaultRecentTasksWindow
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = LanguageEnglish
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// ChatAgent orchestrates a single turn: load history, build a prompt, call
// the LLM, extract and dispatch an optional tool action, and persist both
// sides of the exchange. It is a fresh value per request — it holds no
// state beyond its injected collaborators, so nothing survives the call
// that produced it.
type ChatAgent struct {
	provider      providers.Provider
	tasks         tasks.Store
	conversations conversation.Store
	tools         *ToolRegistry
	config        ChatAgentConfig
}

// NewChatAgent builds a ChatAgent from its collaborators. Construct one per
// request; never share a ChatAgent value across concurrent turns.
func NewChatAgent(provider providers.Provider, taskStore tasks.Store, conversationStore conversation.Store, tools *ToolRegistry, config ChatAgentConfig) *ChatAgent {
	return &ChatAgent{
		provider:      provider,
		tasks:         taskStore,
		conversations: conversationStore,
		tools:         tools,
		config:        config.withDefaults(),
	}
}

// ChatRequest is a single turn's input, per handle_chat_request.
type ChatRequest struct {
	UserID         string
	ConversationID string
	Message        string
	Language       LanguageCode
}

// ChatResponse is a single turn's output.
type ChatResponse struct {
	ConversationID  string
	AssistantText   string
	PerformedAction string
}

// Handle runs the full per-turn algorithm and returns the response to show
// the user. The only errors it returns are precondition failures the
// framing layer should reject before any state is touched (empty user id
// or message); every downstream failure is folded into AssistantText per
// the error-handling policy, not returned as a Go error.
func (a *ChatAgent) Handle(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	turnStart := time.Now()
	outcome := "ok"
	defer func() {
		if a.config.Metrics != nil {
			a.config.Metrics.ChatTurnHandled(outcome, time.Since(turnStart).Seconds())
		}
	}()

	userID := strings.TrimSpace(req.UserID)
	message := strings.TrimSpace(req.Message)
	if userID == "" {
		outcome = "invalid_input"
		return ChatResponse{}, apperrors.InvalidInput("user_id", "user id is required")
	}
	if message == "" {
		outcome = "invalid_input"
		return ChatResponse{}, apperrors.InvalidInput("message", "message must not be empty after trim")
	}
	language := req.Language
	if language == "" || !SupportedLanguages[language] {
		language = a.config.DefaultLanguage
	}

	conversationID, err := a.resolveConversation(ctx, userID, req.ConversationID, message)
	if err != nil {
		outcome = "error"
		return ChatResponse{}, err
	}

	if _, err := a.conversations.AppendMessage(ctx, userID, conversationID, models.RoleUser, message); err != nil {
		outcome = "error"
		return ChatResponse{}, err
	}

	history, err := a.conversations.RecentMessages(ctx, userID, conversationID, a.config.HistoryWindow)
	if err != nil {
		outcome = "error"
		return ChatResponse{}, err
	}
	recentTasks, err := a.tasks.RecentTasks(ctx, userID, a.config.RecentTasksWindow)
	if err != nil {
		recentTasks = nil
		a.config.Logger.Warn("chat agent: failed to load recent tasks projection", "user_id", userID, "error", err)
	}

	systemPrompt := a.buildSystemPrompt(language, recentTasks)
	completionReq := providers.CompletionRequest{
		Model:     a.config.Model,
		System:    systemPrompt,
		Messages:  toCompletionMessages(history),
		MaxTokens: a.config.MaxTokens,
	}

	llmStart := time.Now()
	resp, err := a.provider.Complete(ctx, completionReq)
	if a.config.Metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		a.config.Metrics.RecordLLMRequest(a.provider.Name(), a.config.Model, status, time.Since(llmStart).Seconds(), resp.InputTokens, resp.OutputTokens)
	}
	if err != nil {
		outcome = "llm_unavailable"
		apology := apologyFor(language)
		if _, persistErr := a.conversations.AppendMessage(ctx, userID, conversationID, models.RoleAssistant, apology); persistErr != nil {
			a.config.Logger.Error("chat agent: failed to persist apology turn", "conversation_id", conversationID, "error", persistErr)
		}
		return ChatResponse{ConversationID: conversationID, AssistantText: apology}, nil
	}

	finalText, performedAction := a.dispatch(ctx, userID, resp.Text, language)
	finalText = TranslateIfNeeded(ctx, a.provider, a.config.Logger, language, finalText)

	if _, err := a.conversations.AppendMessage(ctx, userID, conversationID, models.RoleAssistant, finalText); err != nil {
		outcome = "error"
		return ChatResponse{}, err
	}

	return ChatResponse{
		ConversationID:  conversationID,
		AssistantText:   finalText,
		PerformedAction: performedAction,
	}, nil
}

// resolveConversation creates a new conversation when conversationID is
// empty, deriving its title from the incoming message; otherwise it
// returns conversationID unchanged (ownership is checked by the first
// operation that touches it).
func (a *ChatAgent) resolveConversation(ctx context.Context, userID, conversationID, message string) (string, error) {
	if conversationID != "" {
		return conversationID, nil
	}
	conv, err := a.conversations.CreateConversation(ctx, userID, models.TitleFromContent(message))
	if err != nil {
		return "", err
	}
	return conv.ID, nil
}

// dispatch extracts an action directive from the model's reply and, if
// present, invokes the matching tool. It returns the user-facing text and
// the name of the action actually performed (empty if none).
func (a *ChatAgent) dispatch(ctx context.Context, userID, assistantText string, language LanguageCode) (string, string) {
	action, ok := ExtractAction(assistantText)
	if !ok {
		return assistantText, ""
	}

	if _, ok := a.tools.Get(action.Name); !ok {
		if action.Reply != "" {
			return action.Reply, ""
		}
		return assistantText, ""
	}

	arguments := action.Arguments
	if len(arguments) == 0 {
		arguments = json.RawMessage("{}")
	}

	// Dispatch through the registry's Execute, not tool.Execute directly,
	// so MaxToolNameLength/MaxToolParamsSize are enforced on the live path.
	toolStart := time.Now()
	result, err := a.tools.Execute(ContextWithUserID(ctx, userID), action.Name, arguments)
	toolStatus := "success"
	if err != nil || (result != nil && result.IsError) {
		toolStatus = "error"
	}
	if a.config.Metrics != nil {
		a.config.Metrics.RecordToolExecution(action.Name, toolStatus, time.Since(toolStart).Seconds())
	}
	if err != nil {
		a.config.Logger.Error("chat agent: tool execution returned a programming error", "tool", action.Name, "error", err)
		if a.config.Metrics != nil {
			a.config.Metrics.RecordError("chat-agent", "tool_execution")
		}
		return localisedApology(language, "something went wrong handling that request"), ""
	}

	if result.IsError {
		if action.Reply != "" {
			return action.Reply, ""
		}
		return result.Content, ""
	}

	if action.Reply != "" {
		return action.Reply + " " + result.Content, action.Name
	}
	return result.Content, action.Name
}

// buildSystemPrompt renders the system message per the Chat Agent's prompt
// contract: purpose, desired output language, the tool catalogue, and the
// recent-tasks projection.
func (a *ChatAgent) buildSystemPrompt(language LanguageCode, recentTasks []tasks.TaskProjection) string {
	var b strings.Builder
	b.WriteString("You are a task-management assistant. You help the user create, find, complete, update, and delete their own tasks by chatting naturally.\n\n")

	languageName, ok := languageNames[language]
	if !ok {
		languageName = languageNames[LanguageEnglish]
	}
	fmt.Fprintf(&b, "Respond in %s.\n\n", languageName)

	b.WriteString("Available tools:\n")
	for _, tool := range a.tools.Catalogue() {
		fmt.Fprintf(&b, "- %s: %s\n  schema: %s\n", tool.Name(), tool.Description(), tool.Schema())
	}
	b.WriteString("\n")

	b.WriteString(`When the user's intent is an action, reply with a single JSON object of the form {"action": "...", "arguments": {...}, "reply": "..."}; otherwise reply with prose only.` + "\n\n")

	if len(recentTasks) > 0 {
		taskJSON, err := json.Marshal(recentTasks)
		if err == nil {
			fmt.Fprintf(&b, "The user's recent tasks (for reference when choosing a task id):\n%s\n", taskJSON)
		}
	}

	return b.String()
}

func toCompletionMessages(history []*models.Message) []providers.CompletionMessage {
	out := make([]providers.CompletionMessage, 0, len(history))
	for _, msg := range history {
		out = append(out, providers.CompletionMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return out
}

func apologyFor(language LanguageCode) string {
	return localisedApology(language, "I couldn't reach the language model just now. Please try again in a moment.")
}

// localisedApology returns english unless a fixed Urdu phrasing is known
// for this specific message; new phrasings are added as they come up
// rather than attempting full localisation of every apology string.
func localisedApology(language LanguageCode, english string) string {
	if language != LanguageUrdu {
		return english
	}
	switch english {
	case "I couldn't reach the language model just now. Please try again in a moment.":
		return "Mujhe abhi language model tak rasaai nahi mil saki. Barah-e-karam thori dair mein dobara koshish karein."
	case "something went wrong handling that request":
		return "Is darkhwast ko process karte waqt kuch ghalat ho gaya."
	default:
		return english
	}
}
