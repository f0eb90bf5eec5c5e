// Command server runs the blog web application.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogsite/internal/bootstrap"
	"blogsite/internal/config"
	"blogsite/internal/middleware"
	"blogsite/internal/observability"
	"blogsite/internal/server"

	"github.com/prometheus/client_golang/prometheus"
)

var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.InitLogger(cfg.Env, cfg.LogLevel)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "blogsite",
		ServiceVersion: version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	reg := prometheus.NewRegistry()
	rt, err := bootstrap.InitRuntime(context.Background(), cfg, reg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServerWithDeps(cfg, rt.DB, rt.Redis, server.WithRegistry(reg))
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		middleware.Logger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			middleware.Logger.Error("Server stopped", slog.String("error", err.Error()))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("Tracer shutdown error: %v", err)
	}
}
