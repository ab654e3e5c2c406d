package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/http/middleware"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/plantid"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/service"
)

// ServiceName identifies this service in health responses.
const ServiceName = "knowledge-base-api"

// HealthCheck reports service health including DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   ServiceName,
		})
	}
}

// LivenessProbe is a dependency-free liveness check.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// createSessionRequest is the validated shape of POST /session bodies. Both
// fields are optional; anything else in the body is ignored.
type createSessionRequest struct {
	UserID          string          `json:"userId"`
	UserPreferences json.RawMessage `json:"userPreferences"`
}

// CreateSession creates a session, or returns the existing one for a known
// external user id. The session id doubles as the bearer token.
func CreateSession(sessions service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createSessionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
			}
		}

		sess, err := sessions.CreateOrGet(c.UserContext(), req.UserID, req.UserPreferences)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"sessionId": sess.SessionID,
			"token":     sess.SessionID,
		})
	}
}

// UploadDocument accepts a multipart upload (field "file", form field
// "isPublic") and runs it through the processing pipeline.
func UploadDocument(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "No file provided")
		}
		if fh.Filename == "" {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "No file selected")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		isPublic := strings.EqualFold(c.FormValue("isPublic"), "true")

		doc, err := docs.Upload(c.UserContext(), service.UploadInput{
			Reader:    f,
			Filename:  fh.Filename,
			SessionID: middleware.SessionIDFromCtx(c),
			IsPublic:  isPublic,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":  true,
			"document": doc,
		})
	}
}

// ListDocuments returns the documents visible to the caller's session,
// newest first, with aggregate stats.
func ListDocuments(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := docs.List(c.UserContext(), middleware.SessionIDFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"documents": res.Items,
			"stats":     res.Stats,
		})
	}
}

// DeleteDocument removes a document the caller's session owns.
func DeleteDocument(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docs.Delete(c.UserContext(), id, middleware.SessionIDFromCtx(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Document deleted successfully",
		})
	}
}

// DownloadDocument returns a time-limited URL for the archived original file
// of a document visible to the caller's session.
func DownloadDocument(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := docs.DownloadURL(c.UserContext(), id, middleware.SessionIDFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"url":     url,
		})
	}
}

var allowedImageExts = map[string]bool{"jpg": true, "jpeg": true, "png": true}

// IdentifyPlant forwards an uploaded image to the external identification API
// and reports the resulting confidence score.
func IdentifyPlant(identifier plantid.Identifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "No file provided")
		}
		if fh.Filename == "" {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "No file selected")
		}

		ext := ""
		if i := strings.LastIndex(fh.Filename, "."); i >= 0 {
			ext = strings.ToLower(fh.Filename[i+1:])
		}
		if !allowedImageExts[ext] {
			return writeError(c, fiber.StatusBadRequest, "INVALID_IMAGE", "Not a valid image format")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		image, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		res, err := identifier.Identify(c.UserContext(), image)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{
			"success":       true,
			"is_plant":      res.IsPlant,
			"plant_details": res.PlantDetails,
			"confidence":    res.Confidence,
		})
	}
}
