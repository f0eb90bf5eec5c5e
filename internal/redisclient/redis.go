// Package redisclient connects the optional Redis instance used for session
// revocation and CSRF token storage.
package redisclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blogsite/internal/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

type metricsHook struct {
	errors *prometheus.CounterVec
}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			h.errors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			h.errors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Options builds client options from either a redis:// URL or a bare host:port.
func Options(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}

// New connects to Redis at addr and registers an error counter on reg.
// An empty addr returns a nil client. A Redis that cannot be reached is
// logged and also yields a nil client so the site keeps serving.
func New(ctx context.Context, addr string, reg prometheus.Registerer) (*redis.Client, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, nil
	}
	opts, err := Options(addr)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if reg != nil {
		client.AddHook(metricsHook{errors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "redis_errors_total",
			Help: "Redis command errors by command",
		}, []string{"command"})})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		middleware.Logger.Warn("Redis unavailable, continuing without session revocation",
			slog.String("error", err.Error()))
		_ = client.Close()
		return nil, nil
	}
	middleware.Logger.Info("Redis connected successfully")
	return client, nil
}
