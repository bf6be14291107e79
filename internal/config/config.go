package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
)

type Config struct {
	Host                string
	Port                string
	RequestTimeout      time.Duration
	AnalysisTimeout     time.Duration
	WebFetchTimeout     time.Duration
	MaxRequestBodySize  int64
	MaxTextLength       int
	MaxFileSize         int64
	MaxWebContentLength int
	InstructionsFile    string
	WebURLAllowedHosts  []string
	AI                  AIConfig
}

// AIConfig locates the Azure chat and embedding deployments
type AIConfig struct {
	Endpoint            string
	APIKey              string
	DeploymentName      string
	EmbeddingEndpoint   string
	EmbeddingAPIKey     string
	EmbeddingDeployment string
	APIVersion          string
	ChatTimeout         time.Duration
	EmbeddingTimeout    time.Duration
	MaxAttempts         int
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "8080"),
		RequestTimeout:      parseDurationOrDefault("REQUEST_TIMEOUT", 6*time.Minute),
		AnalysisTimeout:     parseDurationOrDefault("ANALYSIS_TIMEOUT", 5*time.Minute),
		WebFetchTimeout:     parseDurationOrDefault("WEB_FETCH_TIMEOUT", 10*time.Second),
		MaxRequestBodySize:  parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 64*1024*1024), // 64MB
		MaxTextLength:       int(parseIntOrDefault("MAX_TEXT_LENGTH", 100_000)),
		MaxFileSize:         parseIntOrDefault("MAX_FILE_SIZE", 50_000_000),
		MaxWebContentLength: int(parseIntOrDefault("MAX_WEB_CONTENT_LENGTH", 1_000_000)),
		InstructionsFile:    strings.TrimSpace(os.Getenv("INSTRUCTIONS_FILE")),
		WebURLAllowedHosts:  parseList("WEB_URL_ALLOWED_HOSTS"),
	}

	chatEndpoint := strings.TrimSpace(os.Getenv("AZURE_AI_FOUNDRY_ENDPOINT"))
	chatKey := strings.TrimSpace(os.Getenv("AZURE_AI_FOUNDRY_API_KEY"))
	cfg.AI = AIConfig{
		Endpoint:            chatEndpoint,
		APIKey:              chatKey,
		DeploymentName:      strings.TrimSpace(os.Getenv("AZURE_AI_FOUNDRY_DEPLOYMENT_NAME")),
		EmbeddingEndpoint:   getEnvOrDefault("AZURE_AI_EMBEDDING_ENDPOINT", chatEndpoint),
		EmbeddingAPIKey:     getEnvOrDefault("AZURE_AI_EMBEDDING_API_KEY", chatKey),
		EmbeddingDeployment: strings.TrimSpace(os.Getenv("AZURE_AI_EMBEDDING_DEPLOYMENT_NAME")),
		APIVersion:          strings.TrimSpace(os.Getenv("AZURE_AI_API_VERSION")),
		ChatTimeout:         parseDurationOrDefault("AI_CHAT_TIMEOUT", 2*time.Minute),
		EmbeddingTimeout:    parseDurationOrDefault("AI_EMBEDDING_TIMEOUT", time.Minute),
		MaxAttempts:         int(parseIntOrDefault("AI_MAX_ATTEMPTS", 3)),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("invalid PORT: %q", cfg.Port), err)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize), nil)
	}
	if cfg.MaxTextLength <= 0 || cfg.MaxFileSize <= 0 || cfg.MaxWebContentLength <= 0 {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("content limits must be > 0 (got text=%d, file=%d, web=%d)",
				cfg.MaxTextLength, cfg.MaxFileSize, cfg.MaxWebContentLength), nil)
	}
	if cfg.AI.MaxAttempts < 1 {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("AI_MAX_ATTEMPTS must be >= 1 (got %d)", cfg.AI.MaxAttempts), nil)
	}
	return cfg, nil
}

// Validate reports the first missing Azure setting. The server refuses to start without them.
func (c AIConfig) Validate() error {
	required := []struct{ name, value string }{
		{"AZURE_AI_FOUNDRY_ENDPOINT", c.Endpoint},
		{"AZURE_AI_FOUNDRY_API_KEY", c.APIKey},
		{"AZURE_AI_FOUNDRY_DEPLOYMENT_NAME", c.DeploymentName},
		{"AZURE_AI_EMBEDDING_DEPLOYMENT_NAME", c.EmbeddingDeployment},
	}
	for _, r := range required {
		if r.value == "" {
			return apperrors.NewConfigurationError(r.name+" is not set", nil)
		}
	}
	return nil
}

// parseList splits a comma-separated variable, dropping blank items.
// An unset variable yields nil.
func parseList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
