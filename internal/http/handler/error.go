package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/extract"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/http/middleware"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/service"
)

// errorPayload defines the standardized error response body. Every failure
// carries success=false and a human-readable message; code is the
// machine-readable kind.
type errorPayload struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Success:   false,
		Error:     message,
		Code:      code,
		RequestID: requestIDFromCtx(c),
	})
}

// writeServiceError maps service-layer sentinels onto HTTP outcomes. Anything
// unrecognized is an internal error and stays opaque to the client.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrFilenameRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "No file selected")
	case errors.Is(err, service.ErrFileTypeNotAllowed):
		return writeError(c, fiber.StatusBadRequest, "FILE_TYPE_NOT_ALLOWED", "File type not allowed. Allowed types: pdf, txt, md")
	case errors.Is(err, service.ErrContentTooShort):
		return writeError(c, fiber.StatusBadRequest, "CONTENT_TOO_SHORT", "Document content is too short to be useful")
	case errors.Is(err, extract.ErrEncrypted),
		errors.Is(err, extract.ErrNoText),
		errors.Is(err, extract.ErrDecode),
		errors.Is(err, extract.ErrCorrupt):
		return writeError(c, fiber.StatusBadRequest, "PROCESSING_ERROR", "Failed to process file: "+err.Error())
	case errors.Is(err, service.ErrNotFoundOrForbidden):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Document not found or access denied")
	case errors.Is(err, service.ErrNoArchive):
		return writeError(c, fiber.StatusNotFound, "NO_ARCHIVE", "No archived original for this document")
	case errors.Is(err, service.ErrSessionRequired):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "No session token provided")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "uploaded file exceeds the size limit")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
