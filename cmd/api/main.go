package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mediapi/internal/config"
	"mediapi/internal/database"
	"mediapi/internal/database/migration"
	handlers "mediapi/internal/http/handler"
	"mediapi/internal/http/middleware"
	"mediapi/internal/otel"
	"mediapi/internal/repository/postgres"
	"mediapi/internal/service"
	"mediapi/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Initialize tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Select the file storage backend
	var store storage.Store
	switch cfg.Storage.Backend {
	case "minio":
		store, err = storage.NewMinIOStore(cfg.Storage)
	default:
		store, err = storage.NewDiskStore(cfg.Storage.UploadDir)
	}
	if err != nil {
		log.Fatalf("failed to initialize file storage: %v", err)
	}

	// Initialize repositories and services
	contentRepo := postgres.NewContentPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	contentSvc := service.NewContentService(store, contentRepo)
	authSvc := service.NewAuthService(userRepo, cfg.Auth.SecretKey,
		time.Duration(cfg.Auth.TokenExpireMins)*time.Minute)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	// Prometheus request counter and /metrics endpoint
	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, contentSvc, authSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
