package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // QUOTE_TIMEZONE must resolve in slim images

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration

	// CORSAllowedHosts lists origin hosts (host[:port]) allowed by CORS.
	CORSAllowedHosts []string

	DB     DatabaseConfig
	Redis  RedisConfig
	Quote  QuoteConfig
	Cache  CacheConfig
	Worker WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// QuoteConfig controls quote numbering and currency display.
type QuoteConfig struct {
	NumberPrefix       string
	TimeZone           *time.Location
	DomesticCurrency   string
	AllocationAttempts int
}

// CacheConfig contains TTLs of the Redis read-through caches.
type CacheConfig struct {
	ReferenceTTL    time.Duration
	ExchangeRateTTL time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	ExchangeRateInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000"))

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Quotes
	tzName := getEnv("QUOTE_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_TIMEZONE %q: %w", tzName, err)
	}
	cfg.Quote = QuoteConfig{
		NumberPrefix:       strings.ToUpper(getEnv("QUOTE_NUMBER_PREFIX", "QT")),
		TimeZone:           loc,
		DomesticCurrency:   strings.ToUpper(getEnv("DOMESTIC_CURRENCY", "INR")),
		AllocationAttempts: getEnvInt("QUOTE_ALLOCATION_ATTEMPTS", 5),
	}
	if cfg.Quote.AllocationAttempts < 1 {
		return nil, errors.New("QUOTE_ALLOCATION_ATTEMPTS must be at least 1")
	}
	if strings.ContainsAny(cfg.Quote.NumberPrefix, "- ") || cfg.Quote.NumberPrefix == "" {
		return nil, errors.New("QUOTE_NUMBER_PREFIX must be non-empty and contain no dashes or spaces")
	}

	// Caches (durations)
	if cfg.Cache.ReferenceTTL, err = parseDurationEnv("REFERENCE_CACHE_TTL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid REFERENCE_CACHE_TTL: %w", err)
	}
	if cfg.Cache.ExchangeRateTTL, err = parseDurationEnv("EXCHANGE_RATE_CACHE_TTL", "2h"); err != nil {
		return nil, fmt.Errorf("invalid EXCHANGE_RATE_CACHE_TTL: %w", err)
	}

	// Workers (durations)
	if cfg.Worker.ExchangeRateInterval, err = parseDurationEnv("EXCHANGE_RATE_INTERVAL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid EXCHANGE_RATE_INTERVAL: %w", err)
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// splitList splits a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
