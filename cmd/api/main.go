// Package main is the entrypoint for the Leadgate API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/leadgate/leadgate/internal/auth"
	"github.com/leadgate/leadgate/internal/cache"
	"github.com/leadgate/leadgate/internal/config"
	"github.com/leadgate/leadgate/internal/handler"
	"github.com/leadgate/leadgate/internal/middleware"
	"github.com/leadgate/leadgate/internal/repository"
	"github.com/leadgate/leadgate/internal/server"
	"github.com/leadgate/leadgate/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Auth chain: token verifier + store-backed resolver. The
	// repository is injected; nothing here is ambient or global.
	verifier := auth.NewHMACVerifier(cfg.TokenHMACSecret)
	resolver := auth.NewResolver(verifier, repo, repo)

	// Services
	projectService := service.NewProjectService(repo, logger, cfg.LeadDeleteBatchSize)
	leadService := service.NewLeadService(repo, logger)

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	leadHandler := handler.NewLeadHandler(leadService, logger)

	r := setupRouter(h, healthHandler, projectHandler, leadHandler, resolver, cacheClient, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	projectHandler *handler.ProjectHandler,
	leadHandler *handler.LeadHandler,
	resolver *auth.Resolver,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Info)

	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Resolver: resolver,
		Cache:    cacheClient,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Lead ingestion: public project key only.
		r.With(middleware.ProjectAuth(authCfg)).Post("/leads", leadHandler.Create)

		// Management surface: bearer token or private account key.
		r.Route("/projects", func(r chi.Router) {
			r.Use(middleware.OwnerAuth(authCfg))

			r.Post("/", projectHandler.Create)
			r.Get("/", projectHandler.List)
			r.Get("/{projectID}", projectHandler.Get)
			r.Delete("/{projectID}", projectHandler.Delete)

			r.Get("/{projectID}/leads", leadHandler.List)
			r.Get("/{projectID}/leads/{leadID}", leadHandler.Get)
			r.Delete("/{projectID}/leads/{leadID}", leadHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
