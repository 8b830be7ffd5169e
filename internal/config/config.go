package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// LLM provider configuration
	Providers ProvidersConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// ProvidersConfig holds shared generation defaults and one entry per provider
type ProvidersConfig struct {
	DefaultProvider string
	MaxTokens       int
	Temperature     float64

	Claude ProviderConfig
	Gemini ProviderConfig
	OpenAI ProviderConfig
}

// ProviderConfig holds settings for a single LLM provider.
// An empty APIKey is valid and switches generation to demo content.
type ProviderConfig struct {
	APIKey         string
	Model          string
	FallbackModels []string // tried in order once Model exhausts its attempts
	Endpoint       string   // overrides the built-in endpoint when set
	MaxAttempts    int
	BaseDelay      time.Duration
	Timeout        time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	maxAttempts := getIntEnv("PROVIDER_MAX_ATTEMPTS", 3)
	baseDelay := getDurationEnv("PROVIDER_RETRY_DELAY", time.Second)
	timeout := getDurationEnv("PROVIDER_TIMEOUT", 30*time.Second)

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3000"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 180*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "ai_blog_writer"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Providers: ProvidersConfig{
			DefaultProvider: strings.ToLower(getEnv("DEFAULT_AI_MODEL", "claude")),
			MaxTokens:       getIntEnv("PROVIDER_MAX_TOKENS", 1000),
			Temperature:     getFloatEnv("PROVIDER_TEMPERATURE", 0.7),
			Claude: ProviderConfig{
				APIKey:         firstEnv("CLAUDE_API_KEY", "ANTHROPIC_API_KEY"),
				Model:          getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-20241022"),
				FallbackModels: getListEnv("CLAUDE_FALLBACK_MODELS"),
				Endpoint:       getEnv("CLAUDE_API_URL", ""),
				MaxAttempts:    getIntEnv("CLAUDE_MAX_ATTEMPTS", maxAttempts),
				BaseDelay:      baseDelay,
				Timeout:        getDurationEnv("CLAUDE_TIMEOUT", timeout),
			},
			Gemini: ProviderConfig{
				APIKey:         firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"),
				Model:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
				FallbackModels: getListEnv("GEMINI_FALLBACK_MODELS"),
				Endpoint:       getEnv("GEMINI_API_URL", ""),
				MaxAttempts:    getIntEnv("GEMINI_MAX_ATTEMPTS", maxAttempts),
				BaseDelay:      baseDelay,
				Timeout:        getDurationEnv("GEMINI_TIMEOUT", timeout),
			},
			OpenAI: ProviderConfig{
				APIKey:         firstEnv("OPENAI_API_KEY"),
				Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
				FallbackModels: getListEnv("OPENAI_FALLBACK_MODELS"),
				Endpoint:       getEnv("OPENAI_API_URL", ""),
				MaxAttempts:    getIntEnv("OPENAI_MAX_ATTEMPTS", maxAttempts),
				BaseDelay:      baseDelay,
				Timeout:        getDurationEnv("OPENAI_TIMEOUT", timeout),
			},
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Providers.MaxTokens <= 0 {
		return fmt.Errorf("PROVIDER_MAX_TOKENS must be positive")
	}
	for name, p := range c.Providers.All() {
		if p.MaxAttempts <= 0 {
			return fmt.Errorf("%s max attempts must be positive", name)
		}
		if p.BaseDelay < 0 {
			return fmt.Errorf("%s retry delay must not be negative", name)
		}
		if p.Timeout <= 0 {
			return fmt.Errorf("%s timeout must be positive", name)
		}
	}
	return nil
}

// All returns the provider entries keyed by provider identifier
func (p *ProvidersConfig) All() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		"claude": p.Claude,
		"gemini": p.Gemini,
		"openai": p.OpenAI,
	}
}

// APIKey returns the configured key for a provider identifier, or "" if none
func (p *ProvidersConfig) APIKey(provider string) string {
	return p.All()[strings.ToLower(provider)].APIKey
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty value among keys
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

// getListEnv splits a comma separated value, dropping blank entries
func getListEnv(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
