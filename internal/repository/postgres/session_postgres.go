package postgres

import (
	"context"
	"database/sql"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/model"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/repository"
)

// SessionPostgres is a PostgreSQL implementation of repository.SessionRepository.
type SessionPostgres struct {
	db *sql.DB
}

// NewSessionPostgres creates a new SessionPostgres repository.
func NewSessionPostgres(db *sql.DB) *SessionPostgres {
	return &SessionPostgres{db: db}
}

var _ repository.SessionRepository = (*SessionPostgres)(nil)

// Create inserts a new session row. The partial unique index on user_id makes
// two racing inserts for the same external user collapse into one: the loser
// hits DO NOTHING, gets no row back, and the resulting sql.ErrNoRows tells
// the caller to re-read the winner's session.
func (r *SessionPostgres) Create(ctx context.Context, s *model.Session) (*model.Session, error) {
	const q = `
		INSERT INTO sessions (session_id, user_id, is_admin, preferences, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		ON CONFLICT (user_id) WHERE user_id IS NOT NULL DO NOTHING
		RETURNING session_id, COALESCE(user_id, ''), is_admin, preferences, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		s.SessionID,
		s.UserID,
		s.IsAdmin,
		[]byte(s.Preferences),
		s.CreatedAt,
	)
	return scanSession(row)
}

// FindByUserID returns the single session mapped to an external user id.
func (r *SessionPostgres) FindByUserID(ctx context.Context, userID string) (*model.Session, error) {
	const q = `
		SELECT session_id, COALESCE(user_id, ''), is_admin, preferences, created_at
		FROM sessions
		WHERE user_id = $1
	`
	return scanSession(r.db.QueryRowContext(ctx, q, userID))
}

// Exists reports whether the session id is stored.
func (r *SessionPostgres) Exists(ctx context.Context, sessionID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM sessions WHERE session_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, sessionID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanSession(row *sql.Row) (*model.Session, error) {
	var (
		s     model.Session
		prefs []byte
	)
	if err := row.Scan(&s.SessionID, &s.UserID, &s.IsAdmin, &prefs, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Preferences = prefs
	return &s, nil
}
