package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultYahooBaseURL is the Yahoo Finance v8 chart endpoint used for price downloads.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Config holds application configuration
type Config struct {
	Env  string
	Port string

	// Database
	DBDriver   string // "sqlite" or "postgres"
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Prices
	RedisURL       string
	PriceCacheTTL  time.Duration
	YahooBaseURL   string
	RequestTimeout time.Duration

	// Metrics defaults
	RiskFreeRate    float64
	BenchmarkSymbol string

	// Pipeline endpoints (cache clear, price download)
	PipelineAPIKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		SQLitePath: getEnv("SQLITE_PATH", "finarius.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "finarius"),
		DBPassword: getEnv("DB_PASSWORD", "finarius"),
		DBName:     getEnv("DB_NAME", "finarius"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL:     os.Getenv("REDIS_URL"),
		YahooBaseURL: getEnv("YAHOO_BASE_URL", DefaultYahooBaseURL),

		BenchmarkSymbol: strings.ToUpper(getEnv("BENCHMARK_SYMBOL", "SPY")),
		PipelineAPIKey:  os.Getenv("PIPELINE_API_KEY"),
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: must be sqlite or postgres", cfg.DBDriver)
	}

	var err error
	if cfg.PriceCacheTTL, err = parseDuration("PRICE_CACHE_TTL", os.Getenv("PRICE_CACHE_TTL"), 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration("REQUEST_TIMEOUT", os.Getenv("REQUEST_TIMEOUT"), 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RiskFreeRate, err = parseFloat("RISK_FREE_RATE", os.Getenv("RISK_FREE_RATE"), 0.02); err != nil {
		return nil, err
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string used by gorm.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// PostgresURL returns the PostgreSQL URL form used by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key, s string, defaultVal time.Duration) (time.Duration, error) {
	if s == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parseFloat(key, s string, defaultVal float64) (float64, error) {
	if s == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return f, nil
}
