package model

import (
	"encoding/json"
	"time"
)

// Session correlates an external user with their stored documents. The
// session id doubles as the bearer token accepted by the API; possession of
// it is the only authorization check.
type Session struct {
	SessionID string `json:"sessionId"`
	// UserID is the external identifier (e.g. a frontend session id). At most
	// one session exists per non-empty UserID.
	UserID      string          `json:"userId,omitempty"`
	IsAdmin     bool            `json:"isAdmin"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}
