package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhayprabhakar/Aviratha-Chatbot/docs"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/config"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/database"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/database/migration"
	handlers "github.com/abhayprabhakar/Aviratha-Chatbot/internal/http/handler"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/http/middleware"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/otel"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/plantid"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/repository/postgres"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/service"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/storage"
)

// @title Knowledge Base API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	// Initialize OpenTelemetry tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otel.Init(context.Background(), time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Create the schema on first start
	if err := migration.EnsureMigrated(context.Background(), db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	sessionRepo := postgres.NewSessionPostgres(db)
	docSvc := service.NewDocumentService(objStore, docRepo, cfg.Upload.Dir)
	sessionSvc := service.NewSessionService(sessionRepo)
	identifier := plantid.NewClient(cfg.PlantID.APIKey, cfg.PlantID.BaseURL)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Upload.MaxBytes,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	// Per-request tracing spans
	app.Use(otelfiber.Middleware())

	// Request counter + /metrics endpoint
	promMw, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, docSvc, sessionSvc, identifier)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
