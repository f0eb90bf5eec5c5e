// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"blogsite/internal/config"
	"blogsite/internal/database"
	"blogsite/internal/middleware"
	"blogsite/internal/models"
	"blogsite/internal/redisclient"
	"blogsite/internal/repository"
	"blogsite/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds the connections opened at startup. Redis may be nil.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// InitRuntime connects to the database and Redis and ensures the configured
// admin account when ADMIN_BOOTSTRAP is set.
func InitRuntime(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	r, err := redisclient.New(ctx, cfg.RedisURL, reg)
	if err != nil {
		return nil, err
	}

	if err := EnsureAdmin(ctx, cfg, db); err != nil {
		return nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	return &Runtime{DB: db, Redis: r}, nil
}

// EnsureAdmin creates the ADMIN_EMAIL account, or promotes it if it already
// exists. An existing password is never overwritten.
func EnsureAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !cfg.AdminBootstrap {
		return nil
	}

	email := service.NormalizeEmail(cfg.AdminEmail)
	if email == "" || cfg.AdminPassword == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set when ADMIN_BOOTSTRAP is enabled")
	}
	name := strings.TrimSpace(cfg.AdminName)
	if name == "" {
		name = "Admin"
	}

	users := repository.NewUserRepository(db)
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsAdmin {
			return nil
		}
		if err := users.SetAdmin(ctx, existing.ID, true); err != nil {
			return err
		}
		middleware.Logger.Info("admin bootstrap promoted existing user", slog.String("email", email))
		return nil
	}

	auth := service.NewAuthService(users, cfg.BcryptCost, email, nil)
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := users.Create(ctx, &models.User{
		Email:    email,
		Password: hash,
		Name:     name,
		IsAdmin:  true,
	}); err != nil {
		return err
	}
	middleware.Logger.Info("admin bootstrap created account", slog.String("email", email))
	return nil
}
