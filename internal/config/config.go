package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	AllowedOrigins   []string
	EnableHSTS       bool
	RateLimit        string
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int

	OpenAIKey        string
	AIProvider       string
	AIModel          string
	AIBaseURL        string
	AIDebugMode      bool
	GeneratorTimeout time.Duration

	DetectorBaseURL string
	DetectorTimeout time.Duration

	CycleLockTTL time.Duration
	DLQRetention time.Duration
	GCInterval   time.Duration

	WorkerDebugMode bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
	OTELSampleRatio float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		AllowedOrigins:   splitAndTrim(getEnv("ALLOWED_ORIGINS", "")),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		RateLimit:        getEnv("RATE_LIMIT", "60-M"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),

		OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
		AIProvider:       getEnv("AI_PROVIDER", "openai"),
		AIModel:          getEnv("AI_MODEL", ""),
		AIBaseURL:        getEnv("AI_BASE_URL", ""),
		AIDebugMode:      getEnvBool("AI_DEBUG_MODE", false),
		GeneratorTimeout: getEnvDuration("GENERATOR_TIMEOUT", 45*time.Second),

		DetectorBaseURL: getEnv("DETECTOR_BASE_URL", ""),
		DetectorTimeout: getEnvDuration("DETECTOR_TIMEOUT", 10*time.Second),

		CycleLockTTL: getEnvDuration("CYCLE_LOCK_TTL", 2*time.Minute),
		DLQRetention: getEnvDuration("DLQ_RETENTION", 168*time.Hour),
		GCInterval:   getEnvDuration("GC_INTERVAL", time.Hour),

		WorkerDebugMode: getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELSampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1.0),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for job queueing (cycle scheduling requires RabbitMQ)")
	}

	if cfg.CycleLockTTL <= 0 {
		return nil, fmt.Errorf("CYCLE_LOCK_TTL must be positive, got %s", cfg.CycleLockTTL)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
