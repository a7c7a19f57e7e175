package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr string

	AdminToken string
	HashSecret string

	RateLimit       int
	RateLimitWindow time.Duration

	StatsCacheTTL time.Duration
	TodayCacheTTL time.Duration
	QueryTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDatabase string
	PostgresSSLMode  string

	ArchiveEnabled       bool
	ArchiveInterval      time.Duration
	ArchiveRetentionDays int
	S3Bucket             string
	S3Region             string
	S3Endpoint           string
	S3AccessKey          string
	S3SecretKey          string
}

func Load() *Config {
	cfg := &Config{
		ListenAddr:           getEnv("LISTEN_ADDR", ":8080"),
		AdminToken:           mustGetEnv("ADMIN_TOKEN"),
		HashSecret:           mustGetEnv("HASH_SECRET"),
		RateLimit:            getEnvInt("RATE_LIMIT", 10),
		RateLimitWindow:      getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		StatsCacheTTL:        getEnvDuration("STATS_CACHE_TTL", time.Hour),
		TodayCacheTTL:        getEnvDuration("TODAY_CACHE_TTL", 15*time.Minute),
		QueryTimeout:         getEnvDuration("QUERY_TIMEOUT", 5*time.Second),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		PostgresUser:         getEnv("POSTGRES_USER", "tracker"),
		PostgresPassword:     getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:         getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:         getEnv("POSTGRES_PORT", "5432"),
		PostgresDatabase:     getEnv("POSTGRES_DATABASE", "festival_tracker"),
		PostgresSSLMode:      getEnv("POSTGRES_SSL_MODE", "disable"),
		ArchiveEnabled:       getEnvBool("ARCHIVE_ENABLED", false),
		ArchiveInterval:      getEnvDuration("ARCHIVE_INTERVAL", 24*time.Hour),
		ArchiveRetentionDays: getEnvInt("ARCHIVE_RETENTION_DAYS", 365),
		S3Bucket:             getEnv("S3_BUCKET", "festival-tracker-archive"),
		S3Region:             getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:           getEnv("S3_ENDPOINT", ""),
		S3AccessKey:          getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:          getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	if cfg.ArchiveEnabled && (cfg.S3AccessKey == "" || cfg.S3SecretKey == "") {
		panic("AWS credentials must be provided when ARCHIVE_ENABLED is set")
	}

	return cfg
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic("Missing required environment variable: " + key)
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
