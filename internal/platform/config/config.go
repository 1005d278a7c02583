package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr            string
	DatabaseURL     string
	JWTSecret       string
	Environment     string
	RulesetPath     string
	RunMigrations   bool
	PayRunInterval  time.Duration
	MetricsEnabled  bool
	DBMaxConns      int
	DBMinConns      int
	DBConnLifetime  time.Duration
	ShutdownTimeout time.Duration
}

func Load() Config {
	return Config{
		Addr:            getEnv("APP_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		Environment:     getEnv("APP_ENV", "development"),
		RulesetPath:     getEnv("RULESET_PATH", ""),
		RunMigrations:   getEnvBool("RUN_MIGRATIONS", true),
		PayRunInterval:  getEnvDuration("PAY_RUN_INTERVAL", 0),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		DBMaxConns:      getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:      getEnvInt("DB_MIN_CONNS", 2),
		DBConnLifetime:  getEnvDuration("DB_CONN_LIFETIME", time.Hour),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB pool sizing: min %d max %d", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
