package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	Snapshot  SnapshotConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Slack     SlackConfig
	APIKey    string
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// SnapshotConfig selects the persistence adapter.
type SnapshotConfig struct {
	Driver  string // "csv" or "postgres"
	CSVPath string
}

// DatabaseConfig holds PostgreSQL connection settings (postgres driver only).
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings for the live change feed.
// An empty Addr disables the feed.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// SlackConfig holds the overdue-digest messenger settings.
// An empty BotToken disables the digest.
type SlackConfig struct {
	BotToken string
	Channel  string
}

// RateLimitConfig holds per-IP request throttling settings.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load reads configuration from environment variables.
// Defaults are safe for local development: CSV persistence in the working
// directory, no Redis, no Slack, no API key.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("CASEPLAN_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("CASEPLAN_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("CASEPLAN_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("CASEPLAN_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("CASEPLAN_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateRPS, err := getEnvFloat("CASEPLAN_RATE_LIMIT_RPS", 50)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("CASEPLAN_RATE_LIMIT_BURST", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("CASEPLAN_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Server: ServerConfig{
			Addr:         getEnv("CASEPLAN_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		Snapshot: SnapshotConfig{
			Driver:  getEnv("CASEPLAN_SNAPSHOT_DRIVER", "csv"),
			CSVPath: getEnv("CASEPLAN_CSV_PATH", "tasks.csv"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("CASEPLAN_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("CASEPLAN_DB_USER", "caseplan"),
			Password: getEnv("CASEPLAN_DB_PASSWORD", ""),
			DBName:   getEnv("CASEPLAN_DB_NAME", "caseplan_dev"),
			SSLMode:  getEnv("CASEPLAN_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("CASEPLAN_REDIS_ADDR", ""),
			Password: getEnv("CASEPLAN_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Slack: SlackConfig{
			BotToken: getEnv("CASEPLAN_SLACK_BOT_TOKEN", ""),
			Channel:  getEnv("CASEPLAN_SLACK_CHANNEL", ""),
		},
		APIKey: getEnv("CASEPLAN_API_KEY", ""),
		RateLimit: RateLimitConfig{
			RequestsPerSecond: rateRPS,
			Burst:             rateBurst,
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	switch c.Snapshot.Driver {
	case "csv":
		if c.Snapshot.CSVPath == "" {
			return errors.New("CASEPLAN_CSV_PATH must not be empty")
		}
	case "postgres":
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("CASEPLAN_DB_PORT must be 1-65535, got %d", c.Database.Port)
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("CASEPLAN_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
		}
	default:
		return fmt.Errorf("CASEPLAN_SNAPSHOT_DRIVER must be 'csv' or 'postgres', got %q", c.Snapshot.Driver)
	}

	if c.APIKey == "" {
		log.Warn().Msg("CASEPLAN_API_KEY is empty; the API accepts unauthenticated requests")
	}

	if c.Slack.BotToken != "" && c.Slack.Channel == "" {
		return errors.New("CASEPLAN_SLACK_CHANNEL is required when CASEPLAN_SLACK_BOT_TOKEN is set")
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("CASEPLAN_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("CASEPLAN_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("CASEPLAN_RATE_LIMIT_RPS must be positive, got %g", c.RateLimit.RequestsPerSecond)
	}
	if c.RateLimit.Burst < 1 {
		return fmt.Errorf("CASEPLAN_RATE_LIMIT_BURST must be >= 1, got %d", c.RateLimit.Burst)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
