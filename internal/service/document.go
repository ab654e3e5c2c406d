package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/extract"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/model"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/repository"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/storage"
)

var (
	ErrReaderNil           = errors.New("reader is nil")
	ErrIDRequired          = errors.New("id is required")
	ErrSessionRequired     = errors.New("session id is required")
	ErrFilenameRequired    = errors.New("no file selected")
	ErrFileTypeNotAllowed  = errors.New("file type not allowed; allowed types: pdf, txt, md")
	ErrContentTooShort     = errors.New("document content is too short to be useful")
	ErrNotFoundOrForbidden = errors.New("document not found or access denied")
	ErrNoArchive           = errors.New("no archived original for document")
)

// minContentLen is the minimum flattened-content length, in runes, for a
// document to be worth storing.
const minContentLen = 100

// previewLen is how much of the stored content upload responses echo back.
const previewLen = 500

// UploadInput carries one inbound upload through the processing pipeline.
type UploadInput struct {
	Reader    io.Reader
	Filename  string
	SessionID string
	IsPublic  bool
}

// UploadedDocument is what an accepted upload reports back: stored identity
// plus a content preview, not the full text.
type UploadedDocument struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	FileName string         `json:"fileName"`
	FileType model.FileType `json:"fileType"`
	FileSize int64          `json:"fileSize"`
}

// DocumentStats aggregates over the documents visible to a session.
type DocumentStats struct {
	TotalDocuments int   `json:"totalDocuments"`
	TotalSize      int64 `json:"totalSize"`
}

// DocumentListResult is the service-level DTO for a session's visible documents.
type DocumentListResult struct {
	Items []model.DocumentSummary `json:"documents"`
	Stats DocumentStats           `json:"stats"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload runs the processing pipeline: write the file to a scoped
	// temporary location, extract and flatten its text, enforce the minimum
	// content length, derive a title, archive the original bytes to object
	// storage, and persist the document. The temporary file is removed on
	// every exit path once written.
	Upload(ctx context.Context, in UploadInput) (*UploadedDocument, error)

	// List returns the documents visible to the session (its own plus
	// public ones), newest first, with aggregate stats.
	List(ctx context.Context, sessionID string) (*DocumentListResult, error)

	// Delete removes a document the session owns, along with its archived
	// original. Missing and foreign documents are indistinguishable:
	// both yield ErrNotFoundOrForbidden.
	Delete(ctx context.Context, id, sessionID string) error

	// DownloadURL returns a time-limited URL for the archived original of a
	// document visible to the session.
	DownloadURL(ctx context.Context, id, sessionID string) (string, error)
}

type documentService struct {
	store     storage.Storage
	repo      repository.DocumentRepository
	uploadDir string
}

// NewDocumentService constructs a new DocumentService. uploadDir is where
// temporary upload artifacts live during processing.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, uploadDir string) DocumentService {
	return &documentService{store: store, repo: repo, uploadDir: uploadDir}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*UploadedDocument, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if in.SessionID == "" {
		return nil, ErrSessionRequired
	}
	safeName := extract.SanitizeFilename(in.Filename)
	if safeName == "" {
		return nil, ErrFilenameRequired
	}
	fileType, ok := extract.AllowedType(safeName)
	if !ok {
		return nil, ErrFileTypeNotAllowed
	}

	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	docID := uuid.New().String()

	// Persist to a scoped temporary location before extraction. The deferred
	// remove guarantees the artifact never outlives the request, whatever
	// the outcome.
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	tmpPath := filepath.Join(s.uploadDir, docID+"_"+safeName)
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	defer os.Remove(tmpPath)

	st, err := os.Stat(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("stat temp file: %w", err)
	}
	fileSize := st.Size()

	raw, err := extract.Extract(data, fileType)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}

	content := extract.Flatten(raw)
	if utf8.RuneCountInString(content) < minContentLen {
		return nil, ErrContentTooShort
	}

	title := extract.TitleFromFilename(safeName)

	// Archive the original bytes; the object key travels in the document's
	// metadata column.
	key := path.Join("uploads", docID+"_"+safeName)
	_, err = s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        fileSize,
		ContentType: contentTypeFor(fileType),
		Metadata: map[string]string{
			"original-filename": in.Filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("archive upload: %w", err)
	}

	doc := &model.Document{
		ID:         docID,
		Title:      title,
		Content:    content,
		FileName:   safeName,
		FileType:   fileType,
		FileSize:   fileSize,
		UploadedBy: in.SessionID,
		IsPublic:   in.IsPublic,
		CreatedAt:  time.Now().UTC(),
		Metadata:   key,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: drop the archived object so no orphan outlives the row.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	return &UploadedDocument{
		ID:       stored.ID,
		Title:    stored.Title,
		Content:  preview(stored.Content),
		FileName: stored.FileName,
		FileType: stored.FileType,
		FileSize: stored.FileSize,
	}, nil
}

// List returns the session's visible documents plus count/size aggregates.
func (s *documentService) List(ctx context.Context, sessionID string) (*DocumentListResult, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	items, err := s.repo.ListVisible(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	res := &DocumentListResult{Items: items}
	res.Stats.TotalDocuments = len(items)
	for _, d := range items {
		res.Stats.TotalSize += d.FileSize
	}
	return res, nil
}

// Delete removes an owned document and its archived original.
func (s *documentService) Delete(ctx context.Context, id, sessionID string) error {
	if id == "" {
		return ErrIDRequired
	}
	if sessionID == "" {
		return ErrSessionRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFoundOrForbidden
		}
		return err
	}
	if doc.UploadedBy != sessionID {
		return ErrNotFoundOrForbidden
	}
	if doc.Metadata != "" {
		if err := s.store.Delete(ctx, doc.Metadata); err != nil {
			return fmt.Errorf("delete archive: %w", err)
		}
	}
	if err := s.repo.DeleteOwned(ctx, id, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFoundOrForbidden
		}
		return err
	}
	return nil
}

// DownloadURL presigns a download link for the archived original of a
// document the session may see.
func (s *documentService) DownloadURL(ctx context.Context, id, sessionID string) (string, error) {
	if id == "" {
		return "", ErrIDRequired
	}
	if sessionID == "" {
		return "", ErrSessionRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFoundOrForbidden
		}
		return "", err
	}
	if doc.UploadedBy != sessionID && !doc.IsPublic {
		return "", ErrNotFoundOrForbidden
	}
	if doc.Metadata == "" {
		return "", ErrNoArchive
	}
	return s.store.PresignGet(ctx, doc.Metadata, 15*time.Minute)
}

func preview(content string) string {
	r := []rune(content)
	if len(r) <= previewLen {
		return content
	}
	return string(r[:previewLen]) + "..."
}

func contentTypeFor(ft model.FileType) string {
	switch ft {
	case model.FileTypePDF:
		return "application/pdf"
	case model.FileTypeMarkdown:
		return "text/markdown"
	default:
		return "text/plain"
	}
}
