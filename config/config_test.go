package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ECONOMIZA_PAGE_SIZE", "MAX_RETRIES", "MARKET_TIMEOUT_MINUTES", "CORS_ORIGINS", "ECONOMIZA_BASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d; want 50", cfg.PageSize)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d; want 3", cfg.MaxRetries)
	}
	if cfg.MarketTimeout != 20*time.Minute {
		t.Errorf("MarketTimeout = %v; want 20m", cfg.MarketTimeout)
	}
	if cfg.EconomizaBaseURL != DefaultEconomizaBaseURL {
		t.Errorf("EconomizaBaseURL = %q", cfg.EconomizaBaseURL)
	}
	if cfg.CORSOrigins != nil {
		t.Errorf("CORSOrigins = %v; want none", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RETRY_BASE_MS", "250")
	t.Setenv("MAX_CONCURRENCY", "16")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DEFAULT_LOOKBACK_DAYS", "not-a-number")

	cfg := Load()

	if cfg.RetryBaseDelay != 250*time.Millisecond {
		t.Errorf("RetryBaseDelay = %v", cfg.RetryBaseDelay)
	}
	if cfg.MaxConcurrency != 16 {
		t.Errorf("MaxConcurrency = %d", cfg.MaxConcurrency)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.DefaultLookback != 3 {
		t.Errorf("DefaultLookback = %d; want fallback 3", cfg.DefaultLookback)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost:     "db",
		PostgresPort:     "5432",
		PostgresUser:     "u",
		PostgresPassword: "p",
		PostgresDB:       "prices",
		PostgresSSLMode:  "disable",
	}

	want := "host=db port=5432 user=u password=p dbname=prices sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q; want %q", got, want)
	}
}
