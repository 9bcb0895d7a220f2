package config

import "time"

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderGoogle     ProviderType = "google"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOllama     ProviderType = "ollama"
)

// Config is the top-level riskdesk configuration, corresponding to .riskdesk.yml.
type Config struct {
	DatabasePath string          `yaml:"database_path" koanf:"database_path"`
	Server       ServerConfig    `yaml:"server" koanf:"server"`
	LLM          LLMConfig       `yaml:"llm" koanf:"llm"`
	Assistant    AssistantConfig `yaml:"assistant" koanf:"assistant"`
	Log          LogConfig       `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LLMConfig selects the generation backend and its sampling settings.
// RequestsPerMinute of 0 disables client-side rate limiting.
type LLMConfig struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	Temperature       float64      `yaml:"temperature" koanf:"temperature"`
	TopP              float64      `yaml:"top_p" koanf:"top_p"`
	MaxOutputTokens   int          `yaml:"max_output_tokens" koanf:"max_output_tokens"`
	RequestsPerMinute int          `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}

// AssistantConfig tunes the conversation loop.
type AssistantConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" koanf:"max_attempts"`
	RetryBackoff time.Duration `yaml:"retry_backoff" koanf:"retry_backoff"`
	DefaultYear  int           `yaml:"default_year" koanf:"default_year"`
	PersonaFile  string        `yaml:"persona_file,omitempty" koanf:"persona_file"`
}

// LogConfig controls the zap logger built at startup.
type LogConfig struct {
	Level       string `yaml:"level" koanf:"level"`
	Development bool   `yaml:"development" koanf:"development"`
}
