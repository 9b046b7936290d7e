// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the service reads at start-up.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	DatabaseDriver string
	DatabaseDSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	RabbitMQURL string
	JWTSecret   string

	CardProcessingDelay    time.Duration
	EWalletProcessingDelay time.Duration
	EWalletRequirePhone    bool

	SeedDemoData bool
}

// Database drivers understood by DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// SetDefaults registers the default for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=kedai port=5432 sslmode=disable")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CARD_PROCESSING_DELAY", "1s")
	v.SetDefault("EWALLET_PROCESSING_DELAY", "800ms")
	v.SetDefault("EWALLET_REQUIRE_PHONE", true)
	v.SetDefault("SEED_DEMO_DATA", false)
}

// Load reads the configuration from environment variables on top of defaults.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:                v.GetString("APP_PORT"),
		AppEnv:                 v.GetString("APP_ENV"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		DatabaseDriver:         v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:            v.GetString("DATABASE_DSN"),
		RedisAddr:              v.GetString("REDIS_ADDR"),
		RedisPassword:          v.GetString("REDIS_PASSWORD"),
		RedisDB:                v.GetInt("REDIS_DB"),
		SessionTTL:             v.GetDuration("SESSION_TTL"),
		RabbitMQURL:            v.GetString("RABBITMQ_URL"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		CardProcessingDelay:    v.GetDuration("CARD_PROCESSING_DELAY"),
		EWalletProcessingDelay: v.GetDuration("EWALLET_PROCESSING_DELAY"),
		EWalletRequirePhone:    v.GetBool("EWALLET_REQUIRE_PHONE"),
		SeedDemoData:           v.GetBool("SEED_DEMO_DATA"),
	}

	switch cfg.DatabaseDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if cfg.CardProcessingDelay < 0 || cfg.EWalletProcessingDelay < 0 {
		return nil, fmt.Errorf("processing delays must not be negative")
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
