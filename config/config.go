package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Database      DatabaseConfig
	Study         StudyConfig
	Providers     ProvidersConfig
	Generation    GenerationConfig
	Export        ExportConfig
	Server        ServerConfig
	Observability ObservabilityConfig
	Environment   string
}

// DatabaseConfig holds the sqlite database configuration
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// StudyConfig points at the study manifest and optional persona library
type StudyConfig struct {
	ManifestPath       string
	PersonaLibraryPath string // optional local persona library (JSON)
	ScriptsDir         string // parsed interview scripts, one file per category
}

// ProvidersConfig holds LLM provider configurations
type ProvidersConfig struct {
	Anthropic ProviderConfig
	OpenAI    ProviderConfig
	Google    ProviderConfig
}

// ProviderConfig holds one vendor's API configuration
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// GenerationConfig holds retry and batching behavior for LLM calls
type GenerationConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Concurrency int

	// MaxTokens is the default output budget for calls that do not set
	// their own.
	MaxTokens int
}

// ExportConfig holds filesystem export configuration
type ExportConfig struct {
	Dir string
}

// ServerConfig holds the read API server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env if it exists; real environment variables win.
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Path:            getEnv("DB_PATH", "data/interviews.db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 1),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Study: StudyConfig{
			ManifestPath:       getEnv("STUDY_MANIFEST", "study.yaml"),
			PersonaLibraryPath: getEnv("PERSONA_LIBRARY", ""),
			ScriptsDir:         getEnv("SCRIPTS_DIR", "data/scripts"),
		},
		Providers: ProvidersConfig{
			Anthropic: ProviderConfig{
				APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
				BaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
				Timeout: getEnvAsDuration("ANTHROPIC_TIMEOUT", 60*time.Second),
			},
			OpenAI: ProviderConfig{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Timeout: getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			},
			Google: ProviderConfig{
				APIKey:  getEnv("GOOGLE_API_KEY", ""),
				BaseURL: getEnv("GOOGLE_BASE_URL", "https://generativelanguage.googleapis.com"),
				Timeout: getEnvAsDuration("GOOGLE_TIMEOUT", 60*time.Second),
			},
		},
		Generation: GenerationConfig{
			MaxAttempts: getEnvAsInt("GENERATION_MAX_ATTEMPTS", 3),
			BaseDelay:   getEnvAsDuration("GENERATION_BASE_DELAY", 5*time.Second),
			Concurrency: getEnvAsInt("GENERATION_CONCURRENCY", 3),
			MaxTokens:   getEnvAsInt("GENERATION_MAX_TOKENS", 4000),
		},
		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", "exports"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "127.0.0.1"),
			Port:            getEnvAsInt("SERVER_PORT", 8090),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Study.ManifestPath == "" {
		return fmt.Errorf("study manifest path is required")
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation max attempts must be at least 1")
	}
	if c.Generation.Concurrency < 1 {
		return fmt.Errorf("generation concurrency must be at least 1")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	return nil
}

// HasAnyProvider reports whether at least one vendor API key is configured.
// Generation commands require one; browse and export commands do not.
func (c *Config) HasAnyProvider() bool {
	return c.Providers.Anthropic.APIKey != "" ||
		c.Providers.OpenAI.APIKey != "" ||
		c.Providers.Google.APIKey != ""
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
