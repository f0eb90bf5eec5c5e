package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:            "5000",
		Env:             "development",
		SecretKey:       "secure-secret-at-least-32-chars-long",
		SQLitePath:      "posts.db",
		SessionTTLHours: 24,
		BcryptCost:      10,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid development", func(*Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing secret", func(c *Config) { c.SecretKey = "" }, true},
		{"No database at all", func(c *Config) { c.SQLitePath = "" }, true},
		{"Postgres only", func(c *Config) { c.SQLitePath = ""; c.DatabaseURL = "postgres://u:p@localhost/blog" }, false},
		{"Zero session ttl", func(c *Config) { c.SessionTTLHours = 0 }, true},
		{"Bcrypt cost too low", func(c *Config) { c.BcryptCost = 2 }, true},
		{"Bcrypt cost too high", func(c *Config) { c.BcryptCost = 40 }, true},
		{"Bootstrap without password", func(c *Config) { c.AdminBootstrap = true; c.AdminEmail = "a@x.com" }, true},
		{"Production with default secret", func(c *Config) { c.Env = "production"; c.SecretKey = DefaultSecretKey }, true},
		{"Production with short secret", func(c *Config) { c.Env = "production"; c.SecretKey = "short" }, true},
		{"Production with strong secret", func(c *Config) { c.Env = "production" }, false},
		{"Development with short secret", func(c *Config) { c.SecretKey = "short" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SECRET_KEY", "")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5000", c.Port)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, DefaultSecretKey, c.SecretKey)
	assert.Equal(t, "posts.db", c.SQLitePath)
	assert.Empty(t, c.DatabaseURL)
	assert.True(t, c.CSRFEnabled)
	assert.Equal(t, 168, c.SessionTTLHours)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("SECRET_KEY", "an-overridden-secret-that-is-long-enough")
	t.Setenv("DATABASE_URL", "postgres://blog:blog@db:5432/blog?sslmode=disable")
	t.Setenv("ADMIN_EMAIL", "  Owner@Example.COM ")
	t.Setenv("CSRF_ENABLED", "false")
	t.Setenv("SESSION_TTL_HOURS", "2")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "an-overridden-secret-that-is-long-enough", c.SecretKey)
	assert.Equal(t, "postgres://blog:blog@db:5432/blog?sslmode=disable", c.DatabaseURL)
	assert.Equal(t, "owner@example.com", c.AdminEmail)
	assert.False(t, c.CSRFEnabled)
	assert.Equal(t, 2, c.SessionTTLHours)
	assert.Equal(t, "2h0m0s", c.SessionTTL().String())
}
