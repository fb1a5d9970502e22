package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           int
	DatabaseURL    string
	LogLevel       string
	NatsURL        string
	NatsToken      string
	APIToken       string
	AllowedOrigins []string

	Narrator        string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string

	PredictorURL     string
	PredictorTimeout time.Duration
	EmbeddingModel   string
	AnalyzeTimeout   time.Duration

	SessionIdleTimeout time.Duration
}

func Load() Config {
	return Config{
		Port:           envInt("REFLECTBOT_PORT", 8080),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		NatsURL:        envStr("NATS_URL", ""),
		NatsToken:      envStr("NATS_TOKEN", ""),
		APIToken:       envStr("REFLECTBOT_API_TOKEN", ""),
		AllowedOrigins: envList("ALLOWED_ORIGINS", []string{"*"}),

		Narrator:        strings.ToLower(envStr("NARRATOR", "gemini")),
		GeminiAPIKey:    envStr("GEMINI_API_KEY", ""),
		GeminiModel:     envStr("GEMINI_MODEL", "gemini-2.5-flash"),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIModel:     envStr("OPENAI_MODEL", "gpt-4o-mini"),

		PredictorURL:     envStr("PREDICTOR_URL", ""),
		PredictorTimeout: envDuration("PREDICTOR_TIMEOUT", 60*time.Second),
		EmbeddingModel:   envStr("EMBEDDING_MODEL", ""),
		AnalyzeTimeout:   envDuration("ANALYZE_TIMEOUT", 180*time.Second),

		SessionIdleTimeout: envDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go durations ("90s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// envList splits a comma-separated value, dropping blanks.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
