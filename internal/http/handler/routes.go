package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/http/middleware"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/plantid"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, docs service.DocumentService, sessions service.SessionService, identifier plantid.Identifier) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Session creation is the one unauthenticated write: it mints the token
	// everything else requires.
	app.Post("/session", CreateSession(sessions))

	auth := middleware.SessionAuth(sessions)

	app.Post("/upload", auth, UploadDocument(docs))
	app.Get("/documents", auth, ListDocuments(docs))
	app.Delete("/documents/:id", auth, DeleteDocument(docs))
	app.Get("/documents/:id/download", auth, DownloadDocument(docs))
	app.Post("/identify-plant", auth, IdentifyPlant(identifier))
}
