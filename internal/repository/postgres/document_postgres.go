package postgres

import (
	"context"
	"database/sql"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/model"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, content, file_name, file_type, file_size, uploaded_by, is_public, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, title, content, file_name, file_type, file_size, uploaded_by, is_public, created_at, metadata
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Content,
		doc.FileName,
		doc.FileType,
		doc.FileSize,
		doc.UploadedBy,
		doc.IsPublic,
		doc.CreatedAt,
		doc.Metadata,
	)
	var out model.Document
	if err := row.Scan(
		&out.ID,
		&out.Title,
		&out.Content,
		&out.FileName,
		&out.FileType,
		&out.FileSize,
		&out.UploadedBy,
		&out.IsPublic,
		&out.CreatedAt,
		&out.Metadata,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT id, title, content, file_name, file_type, file_size, uploaded_by, is_public, created_at, metadata
		FROM documents
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Content,
		&d.FileName,
		&d.FileType,
		&d.FileSize,
		&d.UploadedBy,
		&d.IsPublic,
		&d.CreatedAt,
		&d.Metadata,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListVisible returns summaries of documents owned by the session or public,
// newest first with id as the stable tie-break.
func (r *DocumentPostgres) ListVisible(ctx context.Context, sessionID string) ([]model.DocumentSummary, error) {
	const q = `
		SELECT id, title, file_name, file_type, file_size, created_at, is_public
		FROM documents
		WHERE uploaded_by = $1 OR is_public = TRUE
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentSummary, 0)
	for rows.Next() {
		var d model.DocumentSummary
		if err := rows.Scan(
			&d.ID,
			&d.Title,
			&d.FileName,
			&d.FileType,
			&d.FileSize,
			&d.CreatedAt,
			&d.IsPublic,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteOwned removes the document only when it belongs to the session. A
// missing row and a row owned by someone else both report sql.ErrNoRows.
func (r *DocumentPostgres) DeleteOwned(ctx context.Context, id, sessionID string) error {
	const q = `DELETE FROM documents WHERE id = $1 AND uploaded_by = $2`
	res, err := r.db.ExecContext(ctx, q, id, sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
