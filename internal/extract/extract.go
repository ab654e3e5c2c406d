// Package extract turns raw upload bytes into normalized text. All functions
// are pure: no I/O, no shared state.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/model"
)

var (
	// ErrEncrypted means the PDF declares encryption and cannot be read
	// without a password.
	ErrEncrypted = errors.New("document is encrypted")
	// ErrNoText means extraction succeeded structurally but produced no
	// usable text.
	ErrNoText = errors.New("no extractable text")
	// ErrDecode means a text file is not valid UTF-8.
	ErrDecode = errors.New("invalid UTF-8 content")
	// ErrCorrupt means the file could not be parsed at all.
	ErrCorrupt = errors.New("document is damaged or unsupported")
)

var multiNewline = regexp.MustCompile(`\n{3,}`)

// Extract dispatches on the declared file type and returns normalized,
// line-preserving text. The flattened variant used for storage is produced
// separately via Flatten.
func Extract(data []byte, fileType model.FileType) (string, error) {
	switch fileType {
	case model.FileTypePDF:
		text, _, err := PDF(data)
		return text, err
	case model.FileTypeText, model.FileTypeMarkdown:
		return Text(data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", fileType)
	}
}

// PDF extracts text from PDF bytes page by page, joined with newlines, and
// returns the page count. A page that yields no text (or fails to parse)
// contributes an empty line rather than aborting the whole document.
func PDF(data []byte) (text string, pages int, err error) {
	// The underlying parser panics on some malformed files; surface those as
	// a corrupt-document error instead of crashing the request.
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = fmt.Errorf("%w: %v", ErrCorrupt, r)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", 0, ErrEncrypted
		}
		return "", 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var builder strings.Builder
	total := doc.NumPage()
	for page := 1; page <= total; page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			builder.WriteString("\n")
			continue
		}
		// A failed page contributes an empty line; callers still see the
		// full page count.
		builder.WriteString(pageText(p))
		builder.WriteString("\n")
	}

	out := Normalize(builder.String())
	if out == "" {
		return "", total, ErrNoText
	}
	return out, total, nil
}

func pageText(p pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	content, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return content
}

// Text decodes plain-text or markdown bytes as UTF-8.
func Text(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrDecode
	}
	return Normalize(string(data)), nil
}

// Normalize converts all line terminators to "\n", collapses runs of three or
// more newlines to exactly two, and trims surrounding whitespace. Line
// structure is preserved; use Flatten for the storage form.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Flatten collapses all interior whitespace runs, newlines included, to
// single spaces. This is deliberately lossy: the stored content keeps no
// line structure.
func Flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TitleFromFilename derives a document title: extension stripped, "_" and "-"
// replaced with spaces, truncated to 100 runes.
func TitleFromFilename(name string) string {
	title := strings.TrimSuffix(name, filepath.Ext(name))
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.ReplaceAll(title, "-", " ")
	if r := []rune(title); len(r) > 100 {
		title = string(r[:100])
	}
	return title
}

// AllowedType reports the declared file type for a filename, derived from its
// extension, and whether that type is accepted for upload.
func AllowedType(filename string) (model.FileType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch model.FileType(ext) {
	case model.FileTypePDF, model.FileTypeText, model.FileTypeMarkdown:
		return model.FileType(ext), true
	}
	return "", false
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename strips any path components and replaces characters outside
// [A-Za-z0-9._-] with underscores, so the name is safe to use on disk and as
// an object-storage key.
func SanitizeFilename(name string) string {
	name = filepath.Base(filepath.ToSlash(name))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "._")
}
