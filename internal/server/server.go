// Package server contains the HTTP handlers and middleware stack for the blog.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blogsite/internal/config"
	"blogsite/internal/middleware"
	"blogsite/internal/observability"
	"blogsite/internal/redisclient"
	"blogsite/internal/repository"
	"blogsite/internal/service"
	"blogsite/internal/session"
	"blogsite/internal/web"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	csrfContextKey = "csrf"
	// csrfTokenTTL bounds how long a rendered form stays submittable.
	csrfTokenTTL = 2 * time.Hour
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	views          *web.Views
	registry       *prometheus.Registry
	promMiddleware *fiberprometheus.FiberPrometheus
	metrics        *observability.Metrics
	sessions       *session.Manager
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	authService    *service.AuthService
	postService    *service.PostService
	commentService *service.CommentService
}

// Option customizes a Server built by NewServerWithDeps.
type Option func(*Server)

// WithRegistry makes the server expose metrics from reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	s := &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = observability.NewMetrics(s.registry)
	s.promMiddleware = fiberprometheus.NewWithRegistry(s.registry, "blogsite", "http", "", nil)

	var revocations session.RevocationStore
	if redisClient != nil {
		revocations = session.NewRedisRevocationStore(redisClient)
	}
	s.sessions = session.NewManager(cfg.SecretKey, cfg.SessionTTL(), revocations)

	s.authService = service.NewAuthService(s.userRepo, cfg.BcryptCost, cfg.AdminEmail, s.metrics)
	s.postService = service.NewPostService(s.postRepo, s.metrics)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.metrics)

	s.views = web.NewViews()
	if err := s.views.Load(); err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return s, nil
}

// App returns the Fiber application, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app == nil {
		app := fiber.New(fiber.Config{
			AppName:      "blogsite",
			Views:        s.views,
			ErrorHandler: s.errorHandler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		})
		s.SetupMiddleware(app)
		s.SetupRoutes(app)
		s.app = app
	}
	return s.app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	s.promMiddleware.RegisterAt(app, "/metrics")
	app.Use(s.promMiddleware.Middleware)

	app.Use(helmet.New(helmet.Config{
		// Post images are arbitrary external URLs.
		CrossOriginEmbedderPolicy: "unsafe-none",
		// The csrf middleware requires a same-origin Referer over HTTPS.
		ReferrerPolicy: "same-origin",
	}))
	app.Use(middleware.StructuredLogger())

	if s.config.CSRFEnabled {
		csrfConfig := csrf.Config{
			KeyLookup:      "form:csrf_token",
			CookieName:     "csrf_",
			CookieSameSite: "Lax",
			CookieHTTPOnly: true,
			CookieSecure:   s.secureCookies(),
			Expiration:     csrfTokenTTL,
			ContextKey:     csrfContextKey,
		}
		// Without Redis, tokens live in process memory and are only valid
		// on the instance that issued them.
		if s.redis != nil {
			csrfConfig.Storage = redisclient.NewStorage(s.redis, "csrf:")
		}
		app.Use(csrf.New(csrfConfig))
	}

	app.Use(s.LoadActor())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	app.Get("/", s.Index)
	app.Get("/about", s.About)
	app.Get("/contact", s.Contact)

	app.Get("/register", s.Register)
	app.Post("/register", s.Register)
	app.Get("/login", s.Login)
	app.Post("/login", s.Login)
	app.Get("/logout", s.Logout)

	app.Get("/post/:id", s.ShowPost)
	app.Post("/add-comment/:id", s.LoginRequired("Please log in to comment."), s.AddComment)

	admin := s.AdminRequired()
	app.Get("/new-post", admin, s.NewPost)
	app.Post("/new-post", admin, s.NewPost)
	app.Get("/edit-post/:id", admin, s.EditPost)
	app.Post("/edit-post/:id", admin, s.EditPost)
	app.Get("/delete/:id", admin, s.DeletePost)
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and, when configured, Redis health.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

func (s *Server) secureCookies() bool {
	return s.config.IsProduction()
}

// Start starts the server
func (s *Server) Start() error {
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.App().Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
