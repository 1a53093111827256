package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEconomizaBaseURL is the public price-search API of SEFAZ/AL.
const DefaultEconomizaBaseURL = "http://api.sefaz.al.gov.br/sfz-economiza-alagoas-api/api/public"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisURL string

	EconomizaBaseURL   string
	EconomizaToken     string
	PageSize           int
	MaxRetries         int
	RetryBaseDelay     time.Duration
	RequestDelay       time.Duration
	HTTPTimeout        time.Duration
	MarketTimeout      time.Duration
	MaxConcurrency     int
	DefaultLookback    int
	CollectionCronSpec string

	HTTPAddr    string
	JWTSecret   string
	CORSOrigins []string
	LogLevel    string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "prices"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "prices"),
		PostgresDB:       getEnv("POSTGRES_DB", "prices_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", ""),

		EconomizaBaseURL:   getEnv("ECONOMIZA_BASE_URL", DefaultEconomizaBaseURL),
		EconomizaToken:     getEnv("ECONOMIZA_TOKEN", ""),
		PageSize:           getEnvInt("ECONOMIZA_PAGE_SIZE", 50),
		MaxRetries:         getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelay:     time.Duration(getEnvInt("RETRY_BASE_MS", 2000)) * time.Millisecond,
		RequestDelay:       time.Duration(getEnvInt("REQUEST_DELAY_MS", 300)) * time.Millisecond,
		HTTPTimeout:        time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 45)) * time.Second,
		MarketTimeout:      time.Duration(getEnvInt("MARKET_TIMEOUT_MINUTES", 20)) * time.Minute,
		MaxConcurrency:     getEnvInt("MAX_CONCURRENCY", 0),
		DefaultLookback:    getEnvInt("DEFAULT_LOOKBACK_DAYS", 3),
		CollectionCronSpec: getEnv("COLLECTION_SCHEDULE", ""),

		HTTPAddr:    getEnv("HTTP_ADDR", ":8000"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnvList("CORS_ORIGINS"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
