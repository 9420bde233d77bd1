package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/todoapi/internal/ratelimit"
)

// Config holds all configuration for the todo API server.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port     int
	Env      string
	LogLevel slog.Level
}

type StoreConfig struct {
	Backend string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	AdminKey string
	CacheTTL time.Duration
}

type RateLimitConfig struct {
	Window        time.Duration
	Standard      int
	Write         int
	Admin         int
	SweepInterval time.Duration
}

// Classes returns the limiter configuration for every class.
func (c RateLimitConfig) Classes() map[ratelimit.Class]ratelimit.Config {
	return map[ratelimit.Class]ratelimit.Config{
		ratelimit.Standard: {Window: c.Window, MaxRequests: c.Standard},
		ratelimit.Write:    {Window: c.Window, MaxRequests: c.Write},
		ratelimit.Admin:    {Window: c.Window, MaxRequests: c.Admin},
	}
}

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LoadEnvFiles loads .env.local then .env into the process environment.
// Missing files are ignored and variables already set are never overridden.
func LoadEnvFiles() error {
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	level, err := parseLogLevel(envString("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     envInt("TODOAPI_PORT", 8080),
			Env:      envString("TODOAPI_ENV", "development"),
			LogLevel: level,
		},
		Store: StoreConfig{
			Backend: strings.ToLower(envString("STORE_BACKEND", BackendPostgres)),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsDir:   envString("MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Auth: AuthConfig{
			AdminKey: os.Getenv("ADMIN_API_KEY"),
			CacheTTL: envDuration("AUTH_CACHE_TTL", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			Window:        envDuration("RATE_LIMIT_WINDOW", time.Minute),
			Standard:      envInt("RATE_LIMIT_STANDARD", 100),
			Write:         envInt("RATE_LIMIT_WRITE", 50),
			Admin:         envInt("RATE_LIMIT_ADMIN", 10),
			SweepInterval: envDuration("RATE_LIMIT_SWEEP_INTERVAL", time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("TODOAPI_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Store.Backend {
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is postgres")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of postgres, memory; got %q", c.Store.Backend)
	}

	if c.Redis.URL != "" && !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}

	if c.Auth.CacheTTL < 0 {
		return fmt.Errorf("AUTH_CACHE_TTL must not be negative")
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	for name, v := range map[string]int{
		"RATE_LIMIT_STANDARD": c.RateLimit.Standard,
		"RATE_LIMIT_WRITE":    c.RateLimit.Write,
		"RATE_LIMIT_ADMIN":    c.RateLimit.Admin,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if c.RateLimit.SweepInterval <= 0 {
		return fmt.Errorf("RATE_LIMIT_SWEEP_INTERVAL must be positive")
	}

	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	level, ok := logLevels[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", s)
	}
	return level, nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
