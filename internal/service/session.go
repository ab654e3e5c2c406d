package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/model"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/repository"
)

// SessionService manages the opaque credential records that correlate
// external users with their documents.
type SessionService interface {
	// CreateOrGet returns the existing session for userID when one exists,
	// otherwise creates one. Creation is idempotent per userID: two
	// concurrent calls for the same new userID yield the same session.
	// An empty userID always creates a fresh anonymous session.
	CreateOrGet(ctx context.Context, userID string, preferences json.RawMessage) (*model.Session, error)

	// Exists reports whether sessionID names a stored session. This is the
	// only authorization gate in the system: token possession equals access.
	Exists(ctx context.Context, sessionID string) (bool, error)
}

type sessionService struct {
	repo repository.SessionRepository
}

// NewSessionService constructs a new SessionService.
func NewSessionService(repo repository.SessionRepository) SessionService {
	return &sessionService{repo: repo}
}

func (s *sessionService) CreateOrGet(ctx context.Context, userID string, preferences json.RawMessage) (*model.Session, error) {
	if userID != "" {
		existing, err := s.repo.FindByUserID(ctx, userID)
		if err == nil {
			// Existing preferences are not updated.
			return existing, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	if len(preferences) == 0 {
		preferences = json.RawMessage(`{}`)
	}

	sess := &model.Session{
		SessionID:   uuid.New().String(),
		UserID:      userID,
		Preferences: preferences,
		CreatedAt:   time.Now().UTC(),
	}
	created, err := s.repo.Create(ctx, sess)
	if err != nil {
		// A concurrent request won the insert for this userID; return its
		// session instead of a duplicate.
		if errors.Is(err, sql.ErrNoRows) && userID != "" {
			return s.repo.FindByUserID(ctx, userID)
		}
		return nil, err
	}
	return created, nil
}

func (s *sessionService) Exists(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return s.repo.Exists(ctx, sessionID)
}
