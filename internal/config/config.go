package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Mail      MailConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	BaseURL               string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret          string
	TokenTTL           time.Duration
	CookieTTLDays      int
	BcryptCost         int
	HashConcurrency    int
	PasswordResetTTL   time.Duration
	PasswordChangeSkew time.Duration
}

// RateLimitConfig bounds request volume per client on the API.
type RateLimitConfig struct {
	Max     int
	Window  time.Duration
	Message string
}

// MailConfig holds SMTP settings for outbound mail.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "tour-service"),
			Env:                   getEnv("APP_ENV", EnvDevelopment),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			BaseURL:               os.Getenv("APP_BASE_URL"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 10*1024),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", "dev-secret"),
			TokenTTL:           getEnvAsDuration("JWT_EXPIRES_IN", 90*24*time.Hour),
			CookieTTLDays:      getEnvAsInt("JWT_COOKIE_EXPIRES_IN", 90),
			BcryptCost:         getEnvAsInt("AUTH_BCRYPT_COST", 12),
			HashConcurrency:    getEnvAsInt("AUTH_HASH_CONCURRENCY", 0),
			PasswordResetTTL:   getEnvAsDuration("AUTH_PASSWORD_RESET_TTL", 10*time.Minute),
			PasswordChangeSkew: getEnvAsDuration("AUTH_PASSWORD_CHANGE_SKEW", time.Second),
		},
		RateLimit: RateLimitConfig{
			Max:     getEnvAsInt("RATE_LIMIT_MAX", 100),
			Window:  getEnvAsDuration("RATE_LIMIT_WINDOW", time.Hour),
			Message: getEnv("RATE_LIMIT_MESSAGE", "Too many requests! Try again in an hour."),
		},
		Mail: MailConfig{
			Host:     getEnv("EMAIL_HOST", "localhost"),
			Port:     getEnvAsInt("EMAIL_PORT", 2525),
			Username: os.Getenv("EMAIL_USERNAME"),
			Password: os.Getenv("EMAIL_PASSWORD"),
			From:     getEnv("EMAIL_FROM", "hello@natours.io"),
			FromName: getEnv("EMAIL_FROM_NAME", "Natours"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that are unsafe to serve with.
func (c *Config) Validate() error {
	if c.App.Env != EnvDevelopment && c.App.Env != EnvProduction {
		return fmt.Errorf("invalid APP_ENV %q", c.App.Env)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && c.Auth.JWTSecret == "dev-secret" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CookieTTL returns how long the credential cookie lives.
func (a AuthConfig) CookieTTL() time.Duration {
	return time.Duration(a.CookieTTLDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsDuration accepts Go durations plus a trailing "d" for days ("90d").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if n := len(val); n > 1 && val[n-1] == 'd' {
		days, err := strconv.Atoi(val[:n-1])
		if err != nil {
			return fallback
		}
		return time.Duration(days) * 24 * time.Hour
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
