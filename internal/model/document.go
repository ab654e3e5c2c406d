package model

import "time"

// FileType enumerates the upload formats the extraction pipeline understands.
type FileType string

const (
	FileTypePDF      FileType = "pdf"
	FileTypeText     FileType = "txt"
	FileTypeMarkdown FileType = "md"
)

// Document represents a processed upload: the flattened text content plus
// metadata about the file it came from.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	FileName   string    `json:"fileName"`
	FileType   FileType  `json:"fileType"`
	FileSize   int64     `json:"fileSize"`
	UploadedBy string    `json:"uploadedBy"`
	IsPublic   bool      `json:"isPublic"`
	CreatedAt  time.Time `json:"createdAt"`
	// Metadata holds the object-storage key of the archived original upload,
	// empty when no archive exists.
	Metadata string `json:"-"`
}

// DocumentSummary is the list view of a document: everything except the
// stored content.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	FileName  string    `json:"fileName"`
	FileType  FileType  `json:"fileType"`
	FileSize  int64     `json:"fileSize"`
	CreatedAt time.Time `json:"createdAt"`
	IsPublic  bool      `json:"isPublic"`
}
