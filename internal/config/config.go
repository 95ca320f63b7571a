package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Env       string
	Port      string
	LogLevel  string
	LogFormat string

	StorageBackend string
	StorageKey     string
	DataDir        string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisCache    bool

	RateLimit     int
	ResetInterval time.Duration
}

// Load reads the environment, optionally seeded from a .env file in the
// working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}

	resetInterval, err := time.ParseDuration(getEnv("RESET_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESET_INTERVAL: %w", err)
	}

	redisCache, err := strconv.ParseBool(getEnv("REDIS_CACHE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_CACHE: %w", err)
	}

	cfg := &Config{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendFile)),
		StorageKey:     getEnv("STORAGE_KEY", "habits"),
		DataDir:        getEnv("DATA_DIR", "data"),

		DBDriver:   getEnv("DB_DRIVER", "pgx"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		RedisCache:    redisCache,

		RateLimit:     rateLimit,
		ResetInterval: resetInterval,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case "development", "staging", "production":
	default:
		return errors.New("APP_ENV must be one of: development, staging, production")
	}

	switch c.StorageBackend {
	case BackendMemory, BackendRedis:
	case BackendFile:
		if c.DataDir == "" {
			return errors.New("DATA_DIR is required when STORAGE_BACKEND=file")
		}
	case BackendPostgres:
		if c.DBName == "" || c.DBUser == "" {
			return errors.New("DB_NAME and DB_USER are required when STORAGE_BACKEND=postgres")
		}
		if c.DBDriver != "pgx" && c.DBDriver != "postgres" {
			return errors.New("DB_DRIVER must be pgx or postgres")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if strings.TrimSpace(c.StorageKey) == "" {
		return errors.New("STORAGE_KEY cannot be empty")
	}
	if c.RateLimit < 0 {
		return errors.New("RATE_LIMIT cannot be negative")
	}
	if c.ResetInterval <= 0 {
		return errors.New("RESET_INTERVAL must be positive")
	}
	return nil
}

// NeedsRedis reports whether storage or the rate limiter talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.StorageBackend == BackendRedis ||
		(c.StorageBackend == BackendPostgres && c.RedisCache) ||
		c.RateLimit > 0
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
