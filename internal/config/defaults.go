package config

import "time"

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".riskdesk.yml"

// defaultModels is the model used for each provider when none is configured.
var defaultModels = map[ProviderType]string{
	ProviderGoogle:     "gemini-2.5-flash",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderOpenRouter: "google/gemini-2.5-flash",
	ProviderAnthropic:  "claude-sonnet-4-5-20250929",
	ProviderOllama:     "llama3",
}

// DefaultConfig returns a Config with the settings the assistant is tuned for.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath: "riskdesk.db",
		Server: ServerConfig{
			Port: 8080,
		},
		LLM: LLMConfig{
			Provider:        ProviderGoogle,
			Model:           defaultModels[ProviderGoogle],
			Temperature:     0.3,
			TopP:            0.9,
			MaxOutputTokens: 4000,
		},
		Assistant: AssistantConfig{
			MaxAttempts:  3,
			RetryBackoff: 5 * time.Second,
			DefaultYear:  2024,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultModel returns the model used for provider when none is configured.
// Unknown providers fall back to the Google default.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderGoogle]
}
