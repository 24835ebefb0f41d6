package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	Port     int
	LogLevel string
	// Suggestion backend
	SuggestProvider string
	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	OllamaBaseURL   string
	OllamaModel     string
	SuggestTimeout  time.Duration
	// Task store
	StoreDriver string
	DBPath      string
	SeedFile    string
	// CLI and MCP adapter
	ServerURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            envInt("PORT", 8080),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		SuggestProvider: strings.ToLower(envStr("SUGGEST_PROVIDER", "gemini")),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envStr("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:   envStr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		OllamaBaseURL:   envStr("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:     envStr("OLLAMA_MODEL", "qwen2.5:1.5b"),
		SuggestTimeout:  time.Duration(envInt("SUGGEST_TIMEOUT_SECONDS", 60)) * time.Second,
		StoreDriver:     strings.ToLower(envStr("STORE_DRIVER", StoreMemory)),
		DBPath:          envStr("TASKS_DB_PATH", ":memory:"),
		SeedFile:        os.Getenv("SEED_FILE"),
		ServerURL:       envStr("TASKS_SERVER_URL", "http://localhost:8080"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.SuggestProvider != "gemini" && c.SuggestProvider != "ollama" {
		return fmt.Errorf("SUGGEST_PROVIDER must be gemini or ollama, got %q", c.SuggestProvider)
	}
	if c.SuggestProvider == "ollama" && c.OllamaBaseURL == "" {
		return fmt.Errorf("OLLAMA_BASE_URL must not be empty")
	}
	if c.SuggestTimeout <= 0 {
		return fmt.Errorf("SUGGEST_TIMEOUT_SECONDS must be positive, got %s", c.SuggestTimeout)
	}
	if c.StoreDriver != StoreMemory && c.StoreDriver != StoreSQLite {
		return fmt.Errorf("STORE_DRIVER must be memory or sqlite, got %q", c.StoreDriver)
	}
	if c.StoreDriver == StoreSQLite && c.DBPath == "" {
		return fmt.Errorf("TASKS_DB_PATH must not be empty")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
