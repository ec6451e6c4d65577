package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/llm"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/quota"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	// Shared per-user limiter for generation endpoints (optional)
	var (
		generationLimit middleware.Limiter
		redisClient     *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DialTimeout: 250 * time.Millisecond,
			MaxRetries:  1,
		})
		limiter, err := ratelimit.NewFixedWindow(redisClient, "resumeai:generate", cfg.GenerationRateLimit, time.Minute)
		if err != nil {
			slog.Error("rate limiter init failed", "error", err)
			os.Exit(1)
		}
		generationLimit = limiter
		slog.Info("redis rate limiter enabled", "addr", cfg.RedisAddr, "limit", cfg.GenerationRateLimit)
	}

	// Résumé archive (optional)
	var store storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := storage.NewMinioStore(context.Background(), cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			slog.Error("object storage unavailable, uploads will not be archived", "error", err)
		} else {
			store = minioStore
			slog.Info("resume archive enabled", "bucket", cfg.MinioBucket)
		}
	}

	// Services
	tracker := quota.NewTracker(database.DB, cfg.FreeGenerationLimit)
	profileService := services.NewProfileService(database.DB, tracker)
	authService := services.NewAuthService(database.DB, cfg, profileService)
	generationService := services.NewGenerationService(
		database.DB, cfg, tracker, profileService,
		llm.NewAnthropicClient(cfg.AnthropicAPIURL),
		recorder,
	)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
		ReadTimeout:  30 * time.Second,
		// Generation waits for the model for up to AI_TIMEOUT.
		WriteTimeout: cfg.AITimeout + 15*time.Second,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Routes
	routes.Setup(app, cfg, database.DB, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Health:     handlers.NewHealthHandler(database.Ping, cfg),
		Profile:    handlers.NewProfileHandler(profileService),
		Generation: handlers.NewGenerationHandler(generationService),
		Resume:     handlers.NewResumeHandler(store),
		Admin:      handlers.NewAdminHandler(profileService),
	}, generationLimit)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(cfg.AITimeout); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
