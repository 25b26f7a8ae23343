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
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Inference InferenceConfig
	Assistant AssistantConfig
	Telegram  TelegramConfig
	Storage   StorageConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        string
	Environment string
	FrontendURL string
}

// DatabaseConfig selects and configures the issue store backend
type DatabaseConfig struct {
	Driver        string
	DSN           string
	MongoURI      string
	MongoDatabase string
}

// RedisConfig holds settings for the issue rate limiter
type RedisConfig struct {
	Address         string
	Password        string
	QueuePrefix     string
	IssueDailyLimit int
}

// InferenceConfig holds the hosted image classifier settings
type InferenceConfig struct {
	Token     string
	URL       string
	Timeout   time.Duration
	Threshold float64
}

// AssistantConfig holds the hosted generation model settings
type AssistantConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// TelegramConfig holds the chat bot settings
type TelegramConfig struct {
	Token string
}

// StorageConfig holds the on-disk locations for uploads and reference data
type StorageConfig struct {
	UploadDir string
	DataDir   string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level       string
	Development bool
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	env := getEnv("GO_ENV", "development")

	issueLimit, err := strconv.Atoi(getEnv("ISSUE_DAILY_LIMIT", "20"))
	if err != nil || issueLimit < 1 {
		return nil, fmt.Errorf("ISSUE_DAILY_LIMIT must be a positive integer")
	}

	inferenceTimeout, err := time.ParseDuration(getEnv("HF_TIMEOUT", "20s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HF_TIMEOUT: %w", err)
	}

	assistantTimeout, err := time.ParseDuration(getEnv("GEMINI_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEMINI_TIMEOUT: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			Environment: env,
			FrontendURL: getEnv("FRONTEND_URL", ""),
		},
		Database: DatabaseConfig{
			Driver:        strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			DSN:           getEnv("DATABASE_URL", "data/issues.db"),
			MongoURI:      getEnv("MONGODB_URI", ""),
			MongoDatabase: getEnv("MONGODB_DATABASE", "vishwaguru"),
		},
		Redis: RedisConfig{
			Address:         getEnv("REDIS_ADDRESS", ""),
			Password:        getEnv("REDIS_PASSWORD", ""),
			QueuePrefix:     getEnv("REDIS_QUEUE_FOR_ISSUE_LIMIT", "issue_limit"),
			IssueDailyLimit: issueLimit,
		},
		Inference: InferenceConfig{
			Token:     getEnv("HF_TOKEN", os.Getenv("HUGGINGFACE_HUB_TOKEN")),
			URL:       getEnv("HF_API_URL", "https://api-inference.huggingface.co/models/openai/clip-vit-base-patch32"),
			Timeout:   inferenceTimeout,
			Threshold: 0.4,
		},
		Assistant: AssistantConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			BaseURL: getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com"),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout: assistantTimeout,
		},
		Telegram: TelegramConfig{
			Token: getEnv("TELEGRAM_BOT_TOKEN", ""),
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", "data/uploads"),
			DataDir:   getEnv("DATA_DIR", "data"),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: env != "production",
		},
	}

	switch config.Database.Driver {
	case DriverSQLite, DriverPostgres:
	case DriverMongo:
		if config.Database.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required when DB_DRIVER=mongo")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.Database.Driver)
	}

	return config, nil
}

// IsProduction reports whether the service runs with GO_ENV=production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
