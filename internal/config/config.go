package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Defaults DefaultsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	PoolMin  int
	PoolMax  int
}

// JWTConfig holds token verification configuration.
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration.
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	FrontendURL    string
	MigrationsDir  string
	RefreshMinutes int // aggregate refresh interval
}

// DefaultsConfig carries the tenant-overridable classification thresholds.
type DefaultsConfig struct {
	OverloadThreshold  int // utilization pct strictly above which is overloaded
	UnderutilThreshold int // utilization pct strictly below which is underutilized
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading configuration from environment")
	}

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	poolMin, err := strconv.Atoi(getEnv("DB_POOL_MIN", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_POOL_MIN: %w", err)
	}
	poolMax, err := strconv.Atoi(getEnv("DB_POOL_MAX", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_POOL_MAX: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "manhour_admin"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "manhour"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		PoolMin:  poolMin,
		PoolMax:  poolMax,
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	refreshMinutes, err := strconv.Atoi(getEnv("AGGREGATE_REFRESH_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGGREGATE_REFRESH_MINUTES: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),
		RefreshMinutes: refreshMinutes,
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	overload, err := strconv.Atoi(getEnv("OVERLOAD_THRESHOLD", "110"))
	if err != nil {
		return nil, fmt.Errorf("invalid OVERLOAD_THRESHOLD: %w", err)
	}
	underutil, err := strconv.Atoi(getEnv("UNDERUTIL_THRESHOLD", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid UNDERUTIL_THRESHOLD: %w", err)
	}

	config.Defaults = DefaultsConfig{
		OverloadThreshold:  overload,
		UnderutilThreshold: underutil,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Defaults.UnderutilThreshold >= c.Defaults.OverloadThreshold {
		return fmt.Errorf("UNDERUTIL_THRESHOLD must be below OVERLOAD_THRESHOLD")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
