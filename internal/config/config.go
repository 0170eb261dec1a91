package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	StoreBackend          string
	DBDriver              string
	DBPath                string
	RedisAddr             string
	RedisKeyPrefix        string
	GRPCPort              int
	GRPCReflectionEnabled bool
	HTTPAddr              string
	GenAIAPIKey           string
	GenAIModel            string
	GenAITimeout          time.Duration
	RubricPath            string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	port, err := strconv.Atoi(getEnv("GRPC_PORT", "50051"))
	if err != nil {
		port = 50051
	}

	reflection, err := strconv.ParseBool(getEnv("GRPC_REFLECTION_ENABLED", "false"))
	if err != nil {
		reflection = false
	}

	timeout, err := time.ParseDuration(getEnv("GENAI_TIMEOUT", "120s"))
	if err != nil || timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		StoreBackend:          getEnv("STORE_BACKEND", BackendSQLite),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		DBPath:                getEnv("DB_PATH", "./data/evaluations.db"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisKeyPrefix:        getEnv("REDIS_KEY_PREFIX", "perfeval:"),
		GRPCPort:              port,
		GRPCReflectionEnabled: reflection,
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		GenAIAPIKey:           getEnv("GENAI_API_KEY", os.Getenv("API_KEY")),
		GenAIModel:            getEnv("GENAI_MODEL", "gemini-3-pro-preview"),
		GenAITimeout:          timeout,
		RubricPath:            os.Getenv("RUBRIC_PATH"),
	}
}

// Validate rejects settings the app cannot start with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendSQLite:
		if c.DBDriver != "sqlite3" && c.DBDriver != "sqlite" {
			return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
		}
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC_PORT %d", c.GRPCPort)
	}
	return nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
