package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings. Everything the reconciler depends on
// (rates, delays, timeouts) is env-overridable so deployments and tests can
// inject their own values.
type Config struct {
	Host           string
	Port           string
	DatabaseURL    string
	AdminPassword  string
	AllowedOrigins string

	// HomeCurrency is the single currency all prices are normalized into.
	HomeCurrency string
	// Rates maps foreign currency code to a fixed home-currency multiplier,
	// used when the live rate source is unavailable.
	Rates map[string]float64
	// RatesAPIURL is the live exchange-rate endpoint; empty disables live
	// lookups entirely.
	RatesAPIURL string
	RatesTTL    time.Duration

	// SiteDelay separates consecutive site fetches within one product run.
	// ProductDelay separates consecutive products in a batch. Both are
	// politeness measures, not performance tunables.
	SiteDelay    time.Duration
	ProductDelay time.Duration
	FetchTimeout time.Duration

	// UpdateSchedule is a cron expression (with seconds) for batch runs.
	UpdateSchedule string

	RequestsPerSecond float64
}

// Load reads configuration from the environment with working defaults.
func Load() *Config {
	return &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin123"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		HomeCurrency: getEnv("HOME_CURRENCY", "JPY"),
		Rates: map[string]float64{
			"USD": getEnvFloat("RATE_USD", 150),
			"HKD": getEnvFloat("RATE_HKD", 19),
			"SGD": getEnvFloat("RATE_SGD", 110),
			"EUR": getEnvFloat("RATE_EUR", 160),
			"GBP": getEnvFloat("RATE_GBP", 190),
		},
		RatesAPIURL: getEnv("RATES_API_URL", "https://api.exchangerate-api.com/v4/latest"),
		RatesTTL:    getEnvDuration("RATES_TTL", time.Hour),

		SiteDelay:    getEnvDuration("SITE_FETCH_DELAY", 2*time.Second),
		ProductDelay: getEnvDuration("PRODUCT_DELAY", 3*time.Second),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 30*time.Second),

		UpdateSchedule: getEnv("UPDATE_SCHEDULE", "0 0 */6 * * *"),

		RequestsPerSecond: getEnvFloat("API_RATE_LIMIT", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
