package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// APIConfig holds the backend connection settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ServerConfig holds server configuration for the sandbox backend
type ServerConfig struct {
	Port string
	Env  string
}

// SessionConfig holds where the session key-value file lives
type SessionConfig struct {
	Path string
}

// StorageConfig holds local document output settings
type StorageConfig struct {
	DownloadDir string
}

// JWTConfig holds JWT configuration used by the sandbox to issue tokens
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
	Addr   string
}

// SandboxConfig tunes the in-memory backend
type SandboxConfig struct {
	PageSize      int
	DuplicateRows bool
}

// Config holds all configuration
type Config struct {
	ServiceName string
	API         APIConfig
	Server      ServerConfig
	Session     SessionConfig
	Storage     StorageConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Sandbox     SandboxConfig
}

// Load loads configuration from an optional .env file and the environment
func Load(serviceName string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	config := &Config{
		ServiceName: serviceName,
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000/api"), "/"),
			Timeout: getEnvAsDuration("API_TIMEOUT", 30*time.Second),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8000"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Session: SessionConfig{
			Path: getEnv("SESSION_DB_PATH", filepath.Join(home, ".tokokita", "session.db")),
		},
		Storage: StorageConfig{
			DownloadDir: getEnv("DOWNLOAD_DIR", filepath.Join(home, "Downloads")),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "tokokitasandboxkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "tokokita"),
			Addr:   getEnv("METRICS_ADDR", ""),
		},
		Sandbox: SandboxConfig{
			PageSize:      getEnvAsInt("SANDBOX_PAGE_SIZE", 10),
			DuplicateRows: getEnvAsBool("SANDBOX_DUPLICATE_ROWS", false),
		},
	}

	return config, nil
}

// LogFields returns the configuration as zap fields, without secrets
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("api_base_url", c.API.BaseURL),
		zap.Duration("api_timeout", c.API.Timeout),
		zap.String("session_path", c.Session.Path),
		zap.String("download_dir", c.Storage.DownloadDir),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
