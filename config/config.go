package config

import (
	"log/slog"
	"os"
	"strings"
)

// Config contains configuration for the playlist assistant.
type Config struct {
	OpenAIAPIKey string // OpenAI API key for LLM provider
	GeminiAPIKey string // Google Gemini API key (optional)
	LLMProvider  string // "openai" or "gemini"; empty = infer from model name

	// Model identifiers for the two canonical configs.
	EconomyModel  string
	AccurateModel string

	SentryDSN  string
	ListenAddr string

	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		LLMProvider:  os.Getenv("LLM_PROVIDER"),

		EconomyModel:  getEnv("LLM_ECONOMY_MODEL", "gpt-4o-mini"),
		AccurateModel: getEnv("LLM_ACCURATE_MODEL", "gpt-4o"),

		SentryDSN:  os.Getenv("SENTRY_DSN"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		LogFile:  getEnv("LOG_FILE", "/tmp/playlistd.log"),
		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
