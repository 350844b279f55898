package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (tokens are minted by the auth platform; we only verify)
	JWTSecret string

	// Payment provider
	ProviderBaseURL string
	ProviderAppID   string
	ProviderSecret  string
	ProviderTimeout time.Duration

	// Messaging relay
	RelayBaseURL string
	RelayAPIKey  string
	RelayTimeout time.Duration

	// Platform commission fallback when a tenant has no dated rate rows
	DefaultCommissionRate float64

	// Lifecycle sweeps
	OverdueSweepInterval  time.Duration
	ReminderSweepInterval time.Duration

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "agendly_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		ProviderBaseURL: getEnv("MP_BASE_URL", "https://api.mercadopago.com"),
		ProviderAppID:   getEnv("MP_APP_ID", ""),
		ProviderSecret:  getEnv("MP_APP_SECRET", ""),
		ProviderTimeout: parseDuration(getEnv("MP_TIMEOUT", "15s")),

		RelayBaseURL: getEnv("RELAY_BASE_URL", ""),
		RelayAPIKey:  getEnv("RELAY_API_KEY", ""),
		RelayTimeout: parseDuration(getEnv("RELAY_TIMEOUT", "10s")),

		DefaultCommissionRate: parseFloat(getEnv("DEFAULT_COMMISSION_RATE", "0")),

		OverdueSweepInterval:  parseDuration(getEnv("OVERDUE_SWEEP_INTERVAL", "15m")),
		ReminderSweepInterval: parseDuration(getEnv("REMINDER_SWEEP_INTERVAL", "24h")),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
