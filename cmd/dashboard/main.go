package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/catalog"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/config"
	handlers "github.com/abhayprabhakar/Aviratha-Chatbot/internal/http/handler"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/http/middleware"
)

// The dashboard service exposes the knowledge-base catalog over HTTP. It has
// no database; everything it serves comes from scanning the catalog root.
func main() {
	cfg := config.Load()

	scanner := catalog.NewScanner(cfg.Catalog.Root, cfg.Catalog.CacheTTL)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())

	app.Get("/healthz", handlers.LivenessProbe())
	handlers.RegisterCatalogRoutes(app, scanner)

	port := os.Getenv("DASHBOARD_PORT")
	if port == "" {
		port = "8090"
	}

	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
