package cmd

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ziadkadry99/riskdesk/internal/assistant"
	"github.com/ziadkadry99/riskdesk/internal/audit"
	"github.com/ziadkadry99/riskdesk/internal/chat"
	"github.com/ziadkadry99/riskdesk/internal/config"
	"github.com/ziadkadry99/riskdesk/internal/db"
	"github.com/ziadkadry99/riskdesk/internal/events"
	"github.com/ziadkadry99/riskdesk/internal/llm"
)

// app holds everything a command needs once config is loaded.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	database *db.DB
	events   *events.Store
	audit    *audit.Store
	sessions *chat.Store
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `riskdesk init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the zap logger described by cfg. Output goes to stderr so
// stdout stays free for command output and the MCP protocol.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// openApp loads config, builds the logger and opens the database.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &app{
		cfg:      cfg,
		logger:   logger,
		database: database,
		events:   events.NewStore(database),
		audit:    audit.NewStore(database),
		sessions: chat.NewStore(database),
	}, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
	a.database.Close()
}

// createGenerator creates the generation client for the configured provider,
// rate limited when llm.requests_per_minute is set.
func (a *app) createGenerator(ctx context.Context) (assistant.GenerationClient, error) {
	provider, err := llm.NewProvider(ctx, string(a.cfg.LLM.Provider), a.cfg.LLM.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	if rpm := a.cfg.LLM.RequestsPerMinute; rpm > 0 {
		provider = llm.NewRateLimitedProvider(provider, rpm)
	}
	return assistant.NewProviderClient(provider, a.cfg.LLM.Model, a.logger), nil
}

// assistantConfig maps the assistant and llm sections onto assistant.Config.
func (a *app) assistantConfig() (assistant.Config, error) {
	ac := assistant.DefaultConfig()
	ac.Params = assistant.GenerationParams{
		Temperature:     a.cfg.LLM.Temperature,
		TopP:            a.cfg.LLM.TopP,
		MaxOutputTokens: a.cfg.LLM.MaxOutputTokens,
	}
	ac.MaxAttempts = a.cfg.Assistant.MaxAttempts
	ac.RetryBackoff = a.cfg.Assistant.RetryBackoff
	ac.DefaultYear = a.cfg.Assistant.DefaultYear

	if path := a.cfg.Assistant.PersonaFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ac, fmt.Errorf("reading persona file: %w", err)
		}
		ac.Persona = string(data)
	}
	return ac, nil
}

// newService wires the orchestrator and chat service. generator may be nil
// for commands that only change statuses.
func (a *app) newService(generator assistant.GenerationClient) (*chat.Service, error) {
	ac, err := a.assistantConfig()
	if err != nil {
		return nil, err
	}
	orch := assistant.New(a.events, generator, ac, assistant.WithLogger(a.logger))
	return chat.NewService(orch, a.sessions, a.audit, a.logger), nil
}

// currentUser names the person running the CLI for the audit trail.
func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return os.Getenv("USERNAME")
}
