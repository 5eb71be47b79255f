package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime parameter the application reads. R2 settings
// are optional; without them sync report archiving is disabled.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	CORSAllowedOrigins []string

	StatsAPIBaseURL string
	StatsSeason     string
	StatsGameType   string

	SyncInterval        time.Duration
	SyncRequestInterval time.Duration
	SyncWorkers         int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file for local development.
func Load() (*Config, error) {
	// Load .env if present. A missing file is not fatal.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	season := os.Getenv("STATS_SEASON")
	if season == "" {
		return nil, fmt.Errorf("STATS_SEASON environment variable is not set")
	}

	syncInterval, err := durationEnv("SYNC_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	requestInterval, err := durationEnv("SYNC_REQUEST_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	workers, err := intEnv("SYNC_WORKERS", 1)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		return nil, fmt.Errorf("SYNC_WORKERS must be at least 1, got %d", workers)
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,

		CORSAllowedOrigins: splitEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),

		StatsAPIBaseURL: stringEnv("STATS_API_BASE_URL", "https://api-web.nhle.com/v1"),
		StatsSeason:     season,
		StatsGameType:   stringEnv("STATS_GAME_TYPE", "3"),

		SyncInterval:        syncInterval,
		SyncRequestInterval: requestInterval,
		SyncWorkers:         workers,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// ArchiveEnabled reports whether enough R2 settings are present to archive
// sync reports.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func splitEnv(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
