package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds demo configuration loaded from environment variables.
type Config struct {
	LogLevel string // debug, info, warn, error

	// API keys; a provider is wired only when its key is present.
	OpenAIKey    string
	AnthropicKey string
	GoogleKey    string

	// Local inference server, e.g. an Ollama install on the site server.
	OllamaEndpoint string
	OllamaModel    string

	Timeout time.Duration
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() *Config {
	godotenv.Load()

	return &Config{
		LogLevel:       getEnvOrDefault("TASKCORE_LOG_LEVEL", "info"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		GoogleKey:      os.Getenv("GOOGLE_API_KEY"),
		OllamaEndpoint: os.Getenv("OLLAMA_ENDPOINT"),
		OllamaModel:    getEnvOrDefault("OLLAMA_MODEL", "llama3.2"),
		Timeout:        getEnvDurationOrDefault("TASKCORE_TIMEOUT", time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
