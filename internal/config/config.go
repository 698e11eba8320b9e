package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/vbonduro/fridgechef/internal/domain"
)

type Config struct {
	ListenAddr string

	VisionBackend  string
	VisionMode     string
	VisionEndpoint string
	VisionModel    string
	VisionAPIKey   string
	ClaudeModel    string

	ChatBackend     string
	ChatEndpoint    string
	ChatModel       string
	ChatAPIKey      string
	ChatTemperature float64
	ChatMaxTokens   int

	HTTPTimeout         time.Duration
	ExtractionCachePath string

	LogLevel  string
	LogFile   string
	LogFormat string
}

// Load reads configuration from the environment. Values in a .env file in the
// working directory are used for variables not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:          getEnv("LISTEN_ADDR", ":8080"),
		VisionBackend:       getEnv("VISION_BACKEND", "completions"),
		VisionMode:          getEnv("VISION_MODE", "json"),
		VisionEndpoint:      getEnv("VISION_ENDPOINT", ""),
		VisionModel:         getEnv("VISION_MODEL", ""),
		VisionAPIKey:        getEnv("VISION_API_KEY", ""),
		ClaudeModel:         getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		ChatBackend:         getEnv("CHAT_BACKEND", "http"),
		ChatEndpoint:        getEnv("CHAT_ENDPOINT", ""),
		ChatModel:           getEnv("CHAT_MODEL", ""),
		ChatAPIKey:          getEnv("CHAT_API_KEY", ""),
		ChatTemperature:     getFloat("CHAT_TEMPERATURE", 0.7),
		ChatMaxTokens:       getInt("CHAT_MAX_TOKENS", 500),
		HTTPTimeout:         getDuration("HTTP_TIMEOUT", 60*time.Second),
		ExtractionCachePath: getEnv("EXTRACTION_CACHE_PATH", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFile:             getEnv("LOG_FILE", ""),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
	}
}

// Validate checks that both model endpoints can be called. Missing
// credentials are reported as *domain.ConfigurationError.
func (c *Config) Validate() error {
	if c.VisionAPIKey == "" {
		return &domain.ConfigurationError{Name: "VISION_API_KEY"}
	}
	if c.ChatAPIKey == "" {
		return &domain.ConfigurationError{Name: "CHAT_API_KEY"}
	}

	switch c.VisionBackend {
	case "completions":
		if c.VisionEndpoint == "" {
			return &domain.ConfigurationError{Name: "VISION_ENDPOINT"}
		}
		if c.VisionMode != "json" && c.VisionMode != "stream" {
			return fmt.Errorf("VISION_MODE must be json or stream, got %q", c.VisionMode)
		}
	case "claude":
	default:
		return fmt.Errorf("VISION_BACKEND must be completions or claude, got %q", c.VisionBackend)
	}

	switch c.ChatBackend {
	case "http":
		if c.ChatEndpoint == "" {
			return &domain.ConfigurationError{Name: "CHAT_ENDPOINT"}
		}
	case "openai":
		if c.ChatModel == "" {
			return &domain.ConfigurationError{Name: "CHAT_MODEL"}
		}
	default:
		return fmt.Errorf("CHAT_BACKEND must be http or openai, got %q", c.ChatBackend)
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if f, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return f
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return defaultVal
}
