package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/taskflow/taskflow-api/internal/constants"
)

type Config struct {
	Port            string
	GinMode         string
	DBDriver        string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string
	DBPath          string
	JWTSecret       string
	JWTExpire       time.Duration
	RedisURL        string
	StatsCacheTTL   time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
	ClientURL       string
	LogLevel        string
	LogFile         string
	OpenAIAPIKey    string
	OpenAIModel     string
}

const defaultJWTSecret = "default-secret-key-change-me"

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in release mode")

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "5000"),
		GinMode:      getEnv("GIN_MODE", "debug"),
		DBDriver:     strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "3306"),
		DBUser:       getEnv("DB_USER", "taskflow"),
		DBPassword:   getEnv("DB_PASSWORD", "taskflow"),
		DBName:       getEnv("DB_NAME", "taskflow"),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),
		DBPath:       getEnv("DB_PATH", "taskflow.db"),
		JWTSecret:    getEnv("JWT_SECRET", defaultJWTSecret),
		RedisURL:     getEnv("REDIS_URL", ""),
		ClientURL:    getEnv("CLIENT_URL", "http://localhost:5173"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFile:      getEnv("LOG_FILE", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o"),
	}

	var err error
	if cfg.JWTExpire, err = durationEnv("JWT_EXPIRE", "30d", false); err != nil {
		return nil, err
	}
	if cfg.StatsCacheTTL, err = durationEnv("STATS_CACHE_TTL", constants.DefaultStatsCacheTTL.String(), true); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = durationEnv("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow.String(), false); err != nil {
		return nil, err
	}
	cfg.RateLimitMax, err = strconv.Atoi(getEnv("RATE_LIMIT_MAX", strconv.Itoa(constants.DefaultRateLimitMax)))
	if err != nil || cfg.RateLimitMax < 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MAX: must be a non-negative integer")
	}

	switch cfg.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// ParseDuration extends time.ParseDuration with a "d" (day) suffix, so that
// values such as "30d" are accepted.
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q", value)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(value)
}

func durationEnv(key, defaultValue string, allowZero bool) (time.Duration, error) {
	d, err := ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
