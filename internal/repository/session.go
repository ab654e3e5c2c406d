package repository

import (
	"context"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/model"
)

// SessionRepository defines data access for sessions.
type SessionRepository interface {
	// Create inserts a new session record. When the session carries a UserID
	// that already has a session, the insert is a no-op and sql.ErrNoRows is
	// returned; the caller re-reads the existing session. This keeps
	// create-or-get race-safe without a read-then-write window.
	Create(ctx context.Context, s *model.Session) (*model.Session, error)

	// FindByUserID returns the session mapped to an external user id, or
	// sql.ErrNoRows when none exists.
	FindByUserID(ctx context.Context, userID string) (*model.Session, error)

	// Exists reports whether a session with the given id is stored.
	Exists(ctx context.Context, sessionID string) (bool, error)
}
