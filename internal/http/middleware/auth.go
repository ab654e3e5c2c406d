package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SessionIDLocalKey is the key under which SessionAuth stores the validated
// session id in Fiber's context locals.
const SessionIDLocalKey = "session_id"

// SessionChecker reports whether a session token names a stored session.
// Satisfied by service.SessionService.
type SessionChecker interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// SessionAuth guards a route group with bearer-token session auth.
//
// The Authorization header must carry `Bearer <sessionId>`; a missing or
// malformed header is treated as no token at all. Possession of a valid
// session id is the only check — there is no further identity proofing.
func SessionAuth(sessions SessionChecker) fiber.Handler {
	const prefix = "Bearer "

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, prefix) {
			return unauthorized(c, "No session token provided")
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
		if token == "" {
			return unauthorized(c, "No session token provided")
		}

		ok, err := sessions.Exists(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "internal server error",
			})
		}
		if !ok {
			return unauthorized(c, "Invalid session")
		}

		c.Locals(SessionIDLocalKey, token)
		return c.Next()
	}
}

// SessionIDFromCtx returns the session id stored by SessionAuth, or "".
func SessionIDFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(SessionIDLocalKey).(string); ok {
		return v
	}
	return ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
