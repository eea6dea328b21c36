package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// AssistantConfig tunes the AI assistant without a rebuild.
type AssistantConfig struct {
	Assistant AssistantSettings `toml:"assistant"`
}

// AssistantSettings contains the model and generation settings for the
// text-completion collaborator.
type AssistantSettings struct {
	Model           string  `toml:"model"`
	Temperature     float64 `toml:"temperature"`
	MaxOutputTokens int     `toml:"max_output_tokens"`
	RecentLogCount  int     `toml:"recent_log_count"`
	RateLimitPerMin int     `toml:"rate_limit_per_min"`
}

// DefaultAssistantConfig matches the settings the original deployment used.
func DefaultAssistantConfig() *AssistantConfig {
	return &AssistantConfig{
		Assistant: AssistantSettings{
			Model:           "gemini-2.5-flash",
			Temperature:     0.5,
			MaxOutputTokens: 1000,
			RecentLogCount:  10,
			RateLimitPerMin: 10,
		},
	}
}

// LoadAssistantConfig loads configuration from a TOML file, falling back to
// defaults for missing fields. A missing file is not an error.
func LoadAssistantConfig(filename string) (*AssistantConfig, error) {
	config := DefaultAssistantConfig()
	if filename == "" {
		return config, nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config, nil
	}
	if _, err := toml.DecodeFile(filename, config); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return config, nil
}
