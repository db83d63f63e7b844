package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	PriceProviderYahoo = "yahoo"
	PriceProviderNone  = "none"

	minJWTSecretLength = 32
)

// Config is the application configuration
type Config struct {
	GRPCPort string
	LogLevel string

	DBDriver   string
	DBConnStr  string
	SQLitePath string

	JWTSecret string

	PriceProvider     string
	YahooBaseURL      string
	PriceCacheTTL     time.Duration
	PriceRateLimit    float64 // requests per second
	HTTPClientTimeout time.Duration

	// SeedDemoOwner, when set, seeds demo holdings for that owner at startup
	SeedDemoOwner *uuid.UUID
}

// Load reads an optional .env file and then the environment.
// Returns an error if a value is present but invalid.
func Load() (*Config, error) {
	// .env is optional; the environment always wins over missing files
	_ = godotenv.Load()

	cfg := &Config{
		GRPCPort:      getEnv("GRPC_PORT", ":8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		SQLitePath:    getEnv("SQLITE_PATH", "investfolio.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		PriceProvider: strings.ToLower(getEnv("PRICE_PROVIDER", PriceProviderYahoo)),
		YahooBaseURL:  getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
	}
	cfg.DBConnStr = postgresConnString()

	var err error
	if cfg.PriceCacheTTL, err = getEnvAsDuration("PRICE_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPClientTimeout, err = getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.PriceRateLimit, err = getEnvAsFloat("PRICE_RATE_LIMIT_PER_SEC", 4); err != nil {
		return nil, err
	}

	if raw := os.Getenv("SEED_DEMO_OWNER"); raw != "" {
		owner, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_DEMO_OWNER %q: %w", raw, err)
		}
		cfg.SeedDemoOwner = &owner
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: must be postgres, sqlite or memory", c.DBDriver)
	}

	switch c.PriceProvider {
	case PriceProviderYahoo, PriceProviderNone:
	default:
		return fmt.Errorf("invalid PRICE_PROVIDER %q: must be yahoo or none", c.PriceProvider)
	}

	if len(c.JWTSecret) < minJWTSecretLength {
		return errors.New("JWT_SECRET must be set and at least 32 bytes long")
	}

	if c.PriceRateLimit <= 0 {
		return errors.New("PRICE_RATE_LIMIT_PER_SEC must be positive")
	}
	return nil
}

// postgresConnString uses DB_CONN_STR or builds it from individual vars (Docker friendly)
func postgresConnString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "investfolio"),
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return f, nil
}
