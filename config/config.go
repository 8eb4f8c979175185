package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
	ProviderStub   = "stub"
)

// Config is built once at process start and handed to every constructor that
// needs it. Nothing below reads the environment after Load returns.
type Config struct {
	// Server
	Port     string
	GinMode  string
	LogLevel string

	// Model provider
	Provider        string
	Model           string
	MaxOutputTokens int

	OpenAIAPIKey  string
	OpenAIBaseURL string

	GeminiAPIKey string

	VertexProjectID string
	VertexLocation  string

	// Optional; stream ids fall back to an in-process counter when empty.
	RedisAddr string

	// Console
	GatewayURL string
}

func Load() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Provider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		Model:           getEnv("LLM_MODEL", ""),
		MaxOutputTokens: getIntEnv("LLM_MAX_OUTPUT_TOKENS", 300),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),

		VertexProjectID: getEnv("VERTEX_PROJECT_ID", ""),
		VertexLocation:  getEnv("VERTEX_LOCATION", "us-central1"),

		RedisAddr: firstEnv("REDIS_ADDR", "REDIS_URI", "REDIS_URL"),

		GatewayURL: getEnv("SOUP_GATEWAY_URL", "http://localhost:8080"),
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	return cfg
}

// DefaultModel is the model used when LLM_MODEL is unset.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGemini, ProviderVertex:
		return "gemini-1.5-flash"
	case ProviderStub:
		return "stub"
	default:
		return "gpt-4o"
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
