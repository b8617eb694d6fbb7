// Package config loads the chat agent's configuration from a YAML file,
// with environment-variable overrides and an optional local .env bootstrap.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the chat agent's top-level configuration.
type Config struct {
	LLM          LLMConfig          `yaml:"llm"`
	Database     DatabaseConfig     `yaml:"database"`
	Conversation ConversationConfig `yaml:"conversation"`
	Tasks        TasksConfig        `yaml:"tasks"`
	Recurrence   RecurrenceConfig   `yaml:"recurrence"`
	Language     LanguageConfig     `yaml:"language"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// LLMConfig configures the LLM Client.
type LLMConfig struct {
	// Provider selects which provider to construct: "openai" or "anthropic".
	Provider string `yaml:"provider"`

	// BaseURL overrides the provider's default API base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the provider.
	APIKey string `yaml:"api_key"`

	// Model is the default model id passed on every completion request.
	Model string `yaml:"model"`

	// TimeoutSeconds bounds a single completion call.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// FallbackProvider, when set, is tried if Provider returns
	// LLMUnavailable. Mirrors LLMConfig's own shape with its own key.
	FallbackProvider string `yaml:"fallback_provider"`
	FallbackAPIKey   string `yaml:"fallback_api_key"`
	FallbackModel    string `yaml:"fallback_model"`
}

// Timeout returns TimeoutSeconds as a time.Duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig configures the Postgres-backed task and conversation
// stores. Leave URL empty to use in-memory stores instead (the default for
// local development and tests).
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxConnections  int           `yaml:"max_connections"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// ConversationConfig configures the Conversation Store.
type ConversationConfig struct {
	// HistoryWindow bounds how many prior messages are fed back into the
	// LLM prompt on each turn.
	HistoryWindow int `yaml:"history_window"`
}

// TasksConfig configures the Task Store Adapter.
type TasksConfig struct {
	// RecentTasksWindow bounds how many of the user's tasks are embedded
	// in the system prompt for id disambiguation.
	RecentTasksWindow int `yaml:"recent_tasks_window"`
}

// RecurrenceConfig configures the Recurrence Materialiser.
type RecurrenceConfig struct {
	// TickInterval is how often the materialiser scans for due templates
	// when CronExpr is not set.
	TickInterval time.Duration `yaml:"tick_interval"`

	// CronExpr, when set, drives the materialiser off a cron expression
	// instead of a fixed interval.
	CronExpr string `yaml:"cron_expr"`

	// BatchSize bounds how many due templates a single tick processes.
	BatchSize int `yaml:"batch_size"`
}

// LanguageConfig configures the Language Pipeline.
type LanguageConfig struct {
	// Default is the language assumed when a request does not declare one.
	Default string `yaml:"default"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the configuration file at path, applying
// environment-variable overrides and defaults. If envFile is non-empty, it
// is loaded into the process environment first via godotenv (missing file
// is not an error, since .env is an optional local-dev convenience).
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(expanded))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("failed to parse config: expected a single document")
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	applyLLMDefaults(&cfg.LLM)
	applyDatabaseDefaults(&cfg.Database)
	applyConversationDefaults(&cfg.Conversation)
	applyTasksDefaults(&cfg.Tasks)
	applyRecurrenceDefaults(&cfg.Recurrence)
	applyLanguageDefaults(&cfg.Language)
	applyLoggingDefaults(&cfg.Logging)
}

func applyLLMDefaults(cfg *LLMConfig) {
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 30
	}
}

func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = 25
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}
}

func applyConversationDefaults(cfg *ConversationConfig) {
	if cfg.HistoryWindow == 0 {
		cfg.HistoryWindow = 20
	}
}

func applyTasksDefaults(cfg *TasksConfig) {
	if cfg.RecentTasksWindow == 0 {
		cfg.RecentTasksWindow = 20
	}
}

func applyRecurrenceDefaults(cfg *RecurrenceConfig) {
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Hour
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
}

func applyLanguageDefaults(cfg *LanguageConfig) {
	if cfg.Default == "" {
		cfg.Default = "en"
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if value := strings.TrimSpace(os.Getenv("TODOAGENT_LLM_API_KEY")); value != "" {
		cfg.LLM.APIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("TODOAGENT_LLM_PROVIDER")); value != "" {
		cfg.LLM.Provider = value
	}
	if value := strings.TrimSpace(os.Getenv("TODOAGENT_LLM_MODEL")); value != "" {
		cfg.LLM.Model = value
	}
	if value := strings.TrimSpace(os.Getenv("TODOAGENT_LLM_FALLBACK_API_KEY")); value != "" {
		cfg.LLM.FallbackAPIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("DATABASE_URL")); value != "" {
		cfg.Database.URL = value
	}
	if value := strings.TrimSpace(os.Getenv("TODOAGENT_LOG_LEVEL")); value != "" {
		cfg.Logging.Level = value
	}
	if value := strings.TrimSpace(os.Getenv("TODOAGENT_RECURRENCE_CRON")); value != "" {
		cfg.Recurrence.CronExpr = value
	}
	if value := strings.TrimSpace(os.Getenv("TODOAGENT_CONVERSATION_HISTORY_WINDOW")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			cfg.Conversation.HistoryWindow = parsed
		}
	}
}

// ValidationError reports one or more configuration problems found during Load.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Issues, "\n- ")
}

func validateConfig(cfg *Config) error {
	var issues []string

	switch strings.ToLower(strings.TrimSpace(cfg.LLM.Provider)) {
	case "openai", "anthropic":
	default:
		issues = append(issues, "llm.provider must be \"openai\" or \"anthropic\"")
	}
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		issues = append(issues, "llm.api_key is required")
	}
	if cfg.LLM.TimeoutSeconds < 0 {
		issues = append(issues, "llm.timeout_seconds must be >= 0")
	}
	if cfg.Conversation.HistoryWindow <= 0 {
		issues = append(issues, "conversation.history_window must be > 0")
	}
	if cfg.Tasks.RecentTasksWindow < 0 {
		issues = append(issues, "tasks.recent_tasks_window must be >= 0")
	}
	if cfg.Recurrence.TickInterval < 0 {
		issues = append(issues, "recurrence.tick_interval must be >= 0")
	}
	if cfg.Recurrence.BatchSize <= 0 {
		issues = append(issues, "recurrence.batch_size must be > 0")
	}
	if !validLanguage(cfg.Language.Default) {
		issues = append(issues, "language.default must be \"en\" or \"ur\"")
	}
	if !validLogLevel(cfg.Logging.Level) {
		issues = append(issues, "logging.level must be \"debug\", \"info\", \"warn\", or \"error\"")
	}
	if !validLogFormat(cfg.Logging.Format) {
		issues = append(issues, "logging.format must be \"json\" or \"text\"")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func validLanguage(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "en", "ur":
		return true
	default:
		return false
	}
}

func validLogLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

func validLogFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "text":
		return true
	default:
		return false
	}
}
