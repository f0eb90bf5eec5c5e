// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSecretKey is the development placeholder for SECRET_KEY.
const DefaultSecretKey = "dev-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"APP_ENV"`
	SecretKey string `mapstructure:"SECRET_KEY"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`

	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	SQLitePath               string `mapstructure:"SQLITE_PATH"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	RedisURL        string `mapstructure:"REDIS_URL"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`
	BcryptCost      int    `mapstructure:"BCRYPT_COST"`
	CSRFEnabled     bool   `mapstructure:"CSRF_ENABLED"`

	AdminEmail     string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword  string `mapstructure:"ADMIN_PASSWORD"`
	AdminName      string `mapstructure:"ADMIN_NAME"`
	AdminBootstrap bool   `mapstructure:"ADMIN_BOOTSTRAP"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

var keys = []string{
	"PORT", "APP_ENV", "SECRET_KEY", "LOG_LEVEL",
	"DATABASE_URL", "SQLITE_PATH", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME_MINUTES",
	"REDIS_URL", "SESSION_TTL_HOURS", "BCRYPT_COST", "CSRF_ENABLED",
	"ADMIN_EMAIL", "ADMIN_PASSWORD", "ADMIN_NAME", "ADMIN_BOOTSTRAP",
	"TRACING_ENABLED", "TRACING_EXPORTER", "OTLP_ENDPOINT", "TRACING_SAMPLE_RATIO",
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// The base config file is optional.
	_ = v.ReadInConfig()

	env := strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))
	if env != "" && env != "development" && env != "test" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config.%s.yml: %w", env, err)
			}
		} else {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SECRET_KEY", DefaultSecretKey)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "posts.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SESSION_TTL_HOURS", 24*7)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("CSRF_ENABLED", true)
	v.SetDefault("ADMIN_NAME", "Admin")
	v.SetDefault("ADMIN_BOOTSTRAP", false)
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_EXPORTER", "stdout")
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Env = strings.ToLower(strings.TrimSpace(config.Env))
	config.AdminEmail = strings.ToLower(strings.TrimSpace(config.AdminEmail))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// IsProduction reports whether the app runs with production hardening.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// SessionTTL is the lifetime of a login session.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.DatabaseURL == "" && c.SQLitePath == "" {
		return errors.New("either DATABASE_URL or SQLITE_PATH is required")
	}
	if c.SessionTTLHours <= 0 {
		return errors.New("SESSION_TTL_HOURS must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.AdminBootstrap && (c.AdminEmail == "" || c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required when ADMIN_BOOTSTRAP is enabled")
	}

	if c.IsProduction() {
		if c.SecretKey == DefaultSecretKey {
			return errors.New("SECRET_KEY must be changed from the default value in production")
		}
		if len(c.SecretKey) < 32 {
			return errors.New("SECRET_KEY must be at least 32 characters in production")
		}
		if !c.CSRFEnabled {
			log.Println("WARNING: CSRF_ENABLED is false in production.")
		}
	} else if len(c.SecretKey) < 32 {
		log.Println("WARNING: SECRET_KEY is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
