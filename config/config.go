package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Redis configuration; empty disables the overall leaderboard cache
	RedisURL        string
	OverallCacheTTL time.Duration

	// NATS configuration; empty disables event publishing
	NATSServers string

	// HTTP configuration
	Port               int
	AllowedOrigins     []string
	RateLimitPerSecond float64
	RateLimitBurst     int

	// Leaderboard configuration
	GameTypes      []string
	RepairInterval time.Duration // 0 disables the periodic repair job

	// Notifications; empty disables the Discord webhook
	DiscordWebhookURL string

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		if err := loadDotEnv(); err != nil {
			log.WithError(err).Warn("Ignoring unreadable .env file")
		}

		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// loadDotEnv fills unset variables from the given files, or .env when none are
// named. Missing files are not an error.
func loadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file: %w", err)
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DatabaseName:      os.Getenv("DATABASE_NAME"),
		RedisURL:          os.Getenv("REDIS_URL"),
		NATSServers:       os.Getenv("NATS_SERVERS"),
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvWithDefault("LOG_FORMAT", "text"),
		Environment:       getEnvWithDefault("ENVIRONMENT", "development"),
		AllowedOrigins:    splitList(getEnvWithDefault("ALLOWED_ORIGINS", "*")),
		GameTypes:         splitList(getEnvWithDefault("GAME_TYPES", "world,switzerland,alps")),
	}

	var err error
	if config.Port, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}
	if config.RateLimitBurst, err = intEnv("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}
	if config.RateLimitPerSecond, err = floatEnv("RATE_LIMIT_PER_SECOND", 20); err != nil {
		return nil, err
	}
	if config.RepairInterval, err = durationEnv("REPAIR_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if config.OverallCacheTTL, err = durationEnv("OVERALL_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	if config.Environment != "test" {
		if err := config.validate(); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	if len(c.GameTypes) == 0 {
		return fmt.Errorf("GAME_TYPES must name at least one game type")
	}
	for _, gt := range c.GameTypes {
		if gt == "overall" {
			return fmt.Errorf("GAME_TYPES cannot contain the reserved game type \"overall\"")
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must be positive")
	}
	if c.RedisURL != "" && c.OverallCacheTTL <= 0 {
		return fmt.Errorf("OVERALL_CACHE_TTL must be positive when REDIS_URL is set")
	}
	if c.RepairInterval < 0 {
		return fmt.Errorf("REPAIR_INTERVAL cannot be negative")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func floatEnv(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}

// durationEnv accepts Go durations ("90s", "15m") and treats a bare integer as seconds
func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:        "test",
		Port:               8080,
		AllowedOrigins:     []string{"*"},
		RateLimitPerSecond: 20,
		RateLimitBurst:     40,
		GameTypes:          []string{"world", "switzerland", "alps"},
		OverallCacheTTL:    time.Minute,
		LogLevel:           "debug",
		LogFormat:          "text",
	}
}
