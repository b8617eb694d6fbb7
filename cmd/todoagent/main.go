// Package main provides the CLI entry point for the task chat agent.
//
// The agent itself assumes no transport: this binary wires the Task Store
// Adapter, Conversation Store, LLM Client, and Recurrence Materialiser
// together and exposes them through a small interactive command set. An
// HTTP/API layer is an out-of-scope collaborator per the core's design and
// is expected to call internal/chatservice directly instead.
//
// # Basic usage
//
//	todoagent chat --config todoagent.yaml --user alice
//	todoagent conversations list --config todoagent.yaml --user alice
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/rabiasohail098/todo-chat-agent/internal/agent"
	"github.com/rabiasohail098/todo-chat-agent/internal/agent/providers"
	"github.com/rabiasohail098/todo-chat-agent/internal/chatservice"
	"github.com/rabiasohail098/todo-chat-agent/internal/config"
	"github.com/rabiasohail098/todo-chat-agent/internal/conversation"
	"github.com/rabiasohail098/todo-chat-agent/internal/observability"
	"github.com/rabiasohail098/todo-chat-agent/internal/recurrence"
	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
	"github.com/rabiasohail098/todo-chat-agent/internal/tools"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "todoagent",
		Short:   "A stateless, multilingual, tool-augmented task chat agent",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		// SilenceUsage prevents printing usage on every error.
		SilenceUsage: true,
	}

	root.AddCommand(buildChatCmd(), buildConversationsCmd())
	return root
}

// runtime bundles the components every subcommand needs, assembled once
// from config.
type runtime struct {
	cfg      *config.Config
	db       *sql.DB
	taskDB   tasks.Store
	convDB   conversation.Store
	registry *agent.ToolRegistry
	provider providers.Provider
	metrics  *observability.Metrics
	logger   *slog.Logger
}

func newRuntime(configPath, envFile string) (*runtime, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	// slog.New(logger.Handler()) keeps every component on the familiar
	// *slog.Logger type while routing records through Logger's redaction
	// rules, so secrets never reach stderr even on the components that
	// don't call through observability.Logger directly.
	slogger := slog.New(logger.Handler())

	rt := &runtime{cfg: cfg, metrics: observability.NewMetrics(), logger: slogger}

	if strings.TrimSpace(cfg.Database.URL) == "" {
		rt.taskDB = tasks.NewMemoryStore()
		rt.convDB = conversation.NewMemoryStore()
	} else {
		pgConfig := tasks.DefaultPostgresConfig()
		if cfg.Database.MaxConnections > 0 {
			pgConfig.MaxOpenConns = cfg.Database.MaxConnections
		}
		if cfg.Database.ConnMaxLifetime > 0 {
			pgConfig.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
		}

		taskStore, err := tasks.NewPostgresStoreFromDSN(cfg.Database.URL, pgConfig)
		if err != nil {
			return nil, fmt.Errorf("connect task store: %w", err)
		}
		convStore, err := conversation.NewPostgresStoreFromDSN(cfg.Database.URL, pgConfig)
		if err != nil {
			return nil, fmt.Errorf("connect conversation store: %w", err)
		}
		rt.taskDB = taskStore
		rt.convDB = convStore
	}

	provider, err := buildProvider(cfg.LLM, rt.metrics)
	if err != nil {
		return nil, fmt.Errorf("build llm provider: %w", err)
	}
	rt.provider = provider

	rt.registry = agent.NewToolRegistry()
	rt.registry.Register(tools.NewCreateTaskTool(rt.taskDB))
	rt.registry.Register(tools.NewListTasksTool(rt.taskDB))
	rt.registry.Register(tools.NewCompleteTaskTool(rt.taskDB))
	rt.registry.Register(tools.NewUncompleteTaskTool(rt.taskDB))
	rt.registry.Register(tools.NewUpdateTaskTool(rt.taskDB))
	rt.registry.Register(tools.NewDeleteTaskTool(rt.taskDB))

	return rt, nil
}

// buildProvider constructs the LLM Client, wrapping it in a FailoverProvider
// when a fallback provider is configured.
func buildProvider(cfg config.LLMConfig, metrics *observability.Metrics) (providers.Provider, error) {
	primary, err := buildSingleProvider(cfg.Provider, cfg.APIKey, cfg.BaseURL, cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.FallbackProvider == "" {
		return primary, nil
	}

	secondary, err := buildSingleProvider(cfg.FallbackProvider, cfg.FallbackAPIKey, "", cfg.FallbackModel)
	if err != nil {
		return nil, fmt.Errorf("build fallback provider: %w", err)
	}
	failover := providers.NewFailoverProvider(primary, secondary)
	failover.SetMetrics(metrics)
	return failover, nil
}

func buildSingleProvider(name, apiKey, baseURL, model string) (providers.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "openai":
		return providers.NewOpenAIProvider(providers.OpenAIConfig{
			APIKey:       apiKey,
			BaseURL:      baseURL,
			DefaultModel: model,
		})
	case "anthropic":
		return providers.NewAnthropicProvider(providers.AnthropicConfig{
			APIKey:       apiKey,
			BaseURL:      baseURL,
			DefaultModel: model,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", name)
	}
}

func (rt *runtime) chatAgentConfig() agent.ChatAgentConfig {
	return agent.ChatAgentConfig{
		Model:             rt.cfg.LLM.Model,
		HistoryWindow:     rt.cfg.Conversation.HistoryWindow,
		RecentTasksWindow: rt.cfg.Tasks.RecentTasksWindow,
		DefaultLanguage:   agent.LanguageCode(rt.cfg.Language.Default),
		Logger:            rt.logger,
		Metrics:           rt.metrics,
	}
}

func (rt *runtime) service() *chatservice.Service {
	return chatservice.New(rt.provider, rt.taskDB, rt.convDB, rt.registry, rt.chatAgentConfig())
}

func (rt *runtime) startRecurrence(ctx context.Context) *recurrence.Materialiser {
	m := recurrence.New(rt.taskDB, recurrence.Config{
		TickInterval: rt.cfg.Recurrence.TickInterval,
		CronExpr:     rt.cfg.Recurrence.CronExpr,
		BatchSize:    rt.cfg.Recurrence.BatchSize,
		Logger:       rt.logger,
		Metrics:      rt.metrics,
	})
	m.Start(ctx)
	return m
}

func (rt *runtime) close() {
	if rt.db != nil {
		_ = rt.db.Close()
	}
	type closer interface{ Close() error }
	if c, ok := rt.taskDB.(closer); ok {
		_ = c.Close()
	}
	if c, ok := rt.convDB.(closer); ok {
		_ = c.Close()
	}
}

func buildChatCmd() *cobra.Command {
	var configPath, envFile, userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session against the task agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), configPath, envFile, userID)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "todoagent.yaml", "path to the config file")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional .env file to bootstrap local configuration")
	cmd.Flags().StringVar(&userID, "user", "", "acting user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runChat(ctx context.Context, configPath, envFile, userID string) error {
	rt, err := newRuntime(configPath, envFile)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	materialiser := rt.startRecurrence(ctx)
	defer materialiser.Stop()

	svc := rt.service()

	fmt.Println("Type a message and press enter. Ctrl+D or Ctrl+C to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	conversationID := ""

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}

		resp, err := svc.HandleChatRequest(ctx, userID, conversationID, message, agent.LanguageCode(rt.cfg.Language.Default))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		conversationID = resp.ConversationID
		fmt.Println(resp.AssistantText)
	}

	return scanner.Err()
}

func buildConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "Inspect stored conversations",
	}
	cmd.AddCommand(buildConversationsListCmd(), buildConversationsShowCmd(), buildConversationsDeleteCmd())
	return cmd
}

func buildConversationsListCmd() *cobra.Command {
	var configPath, envFile, userID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(configPath, envFile)
			if err != nil {
				return err
			}
			defer rt.close()

			convs, err := rt.service().ListConversations(cmd.Context(), userID)
			if err != nil {
				return err
			}
			for _, c := range convs {
				fmt.Printf("%s\t%s\t%s\n", c.ID, c.UpdatedAt, c.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "todoagent.yaml", "path to the config file")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional .env file to bootstrap local configuration")
	cmd.Flags().StringVar(&userID, "user", "", "acting user id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func buildConversationsShowCmd() *cobra.Command {
	var configPath, envFile, userID, conversationID string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a conversation's full transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(configPath, envFile)
			if err != nil {
				return err
			}
			defer rt.close()

			msgs, err := rt.service().GetConversationMessages(cmd.Context(), userID, conversationID)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("15:04:05"), m.Role, m.Content)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "todoagent.yaml", "path to the config file")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional .env file to bootstrap local configuration")
	cmd.Flags().StringVar(&userID, "user", "", "acting user id (required)")
	cmd.Flags().StringVar(&conversationID, "conversation", "", "conversation id (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("conversation")
	return cmd
}

func buildConversationsDeleteCmd() *cobra.Command {
	var configPath, envFile, userID, conversationID string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a conversation and its messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(configPath, envFile)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.service().DeleteConversation(cmd.Context(), userID, conversationID)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "todoagent.yaml", "path to the config file")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional .env file to bootstrap local configuration")
	cmd.Flags().StringVar(&userID, "user", "", "acting user id (required)")
	cmd.Flags().StringVar(&conversationID, "conversation", "", "conversation id (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("conversation")
	return cmd
}
