package repository

import (
	"context"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
type DocumentRepository interface {
	// Create inserts a new document record. The caller provides ID and
	// CreatedAt. Returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, including its content and
	// archive metadata.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListVisible returns every document owned by the session or marked
	// public, newest first. Ties on created_at are broken by id so the order
	// is stable.
	ListVisible(ctx context.Context, sessionID string) ([]model.DocumentSummary, error)

	// DeleteOwned removes the document only if it exists and is owned by the
	// session. Returns sql.ErrNoRows when no such owned row matched; callers
	// must not learn whether the document exists at all.
	DeleteOwned(ctx context.Context, id, sessionID string) error
}
