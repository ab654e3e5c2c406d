// Package catalog scans a directory tree of curated knowledge-base PDFs and
// serves point-in-time snapshots of what it found. The layout is one
// subdirectory per category with the PDF files directly inside it.
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/extract"
)

const (
	previewLen      = 1000
	wordsPerMinute  = 200
	defaultCacheTTL = 5 * time.Minute
)

// FileInfo describes one catalog PDF. When extraction fails the file is still
// listed with ScanError set and the derived fields left at zero.
type FileInfo struct {
	FileName           string    `json:"fileName"`
	FilePath           string    `json:"filePath"`
	Category           string    `json:"category"`
	FileSize           int64     `json:"fileSize"`
	ModifiedAt         time.Time `json:"modifiedAt"`
	PageCount          int       `json:"pageCount"`
	WordCount          int       `json:"wordCount"`
	ReadingTimeMinutes int       `json:"readingTimeMinutes"`
	TextPreview        string    `json:"textPreview"`
	ScanError          string    `json:"scanError,omitempty"`
}

// CategoryStats aggregates the files of one category.
type CategoryStats struct {
	Files      int   `json:"files"`
	TotalSize  int64 `json:"totalSize"`
	TotalPages int   `json:"totalPages"`
	TotalWords int   `json:"totalWords"`
}

// Snapshot is the immutable result of one scan. Callers must not mutate it;
// query helpers return copies.
type Snapshot struct {
	ScannedAt  time.Time                `json:"scannedAt"`
	Files      []FileInfo               `json:"files"`
	Categories map[string]CategoryStats `json:"categories"`
}

// Scanner walks the catalog root on demand and caches the result for a TTL.
type Scanner struct {
	root string
	ttl  time.Duration

	mu   sync.RWMutex
	snap *Snapshot
}

func NewScanner(root string, ttl time.Duration) *Scanner {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Scanner{root: root, ttl: ttl}
}

// Snapshot returns the cached scan when it is younger than the TTL, otherwise
// it rescans. Concurrent callers may race to rescan; last write wins and every
// caller still gets a consistent snapshot.
func (s *Scanner) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	if snap != nil && time.Since(snap.ScannedAt) < s.ttl {
		return snap, nil
	}
	return s.Rescan(ctx)
}

// Rescan walks the catalog root unconditionally and replaces the cache.
func (s *Scanner) Rescan(ctx context.Context) (*Snapshot, error) {
	snap, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return snap, nil
}

func (s *Scanner) scan(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		ScannedAt:  time.Now().UTC(),
		Files:      []FileInfo{},
		Categories: map[string]CategoryStats{},
	}

	categories, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		// A missing root is an empty catalog, not a failure.
		return snap, nil
	}
	if err != nil {
		return nil, err
	}

	for _, cat := range categories {
		if !cat.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		catDir := filepath.Join(s.root, cat.Name())
		entries, err := os.ReadDir(catDir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			info := s.scanFile(catDir, cat.Name(), entry.Name())
			snap.Files = append(snap.Files, info)

			stats := snap.Categories[cat.Name()]
			stats.Files++
			stats.TotalSize += info.FileSize
			stats.TotalPages += info.PageCount
			stats.TotalWords += info.WordCount
			snap.Categories[cat.Name()] = stats
		}
	}

	sort.Slice(snap.Files, func(i, j int) bool {
		if snap.Files[i].Category != snap.Files[j].Category {
			return snap.Files[i].Category < snap.Files[j].Category
		}
		return snap.Files[i].FileName < snap.Files[j].FileName
	})
	return snap, nil
}

func (s *Scanner) scanFile(dir, category, name string) FileInfo {
	path := filepath.Join(dir, name)
	info := FileInfo{
		FileName: name,
		FilePath: path,
		Category: category,
	}

	st, err := os.Stat(path)
	if err != nil {
		info.ScanError = err.Error()
		return info
	}
	info.FileSize = st.Size()
	info.ModifiedAt = st.ModTime().UTC()

	data, err := os.ReadFile(path)
	if err != nil {
		info.ScanError = err.Error()
		return info
	}

	text, pages, err := extract.PDF(data)
	if err != nil {
		info.ScanError = err.Error()
		return info
	}

	info.PageCount = pages
	info.WordCount = len(strings.Fields(text))
	if info.WordCount > 0 {
		info.ReadingTimeMinutes = info.WordCount / wordsPerMinute
		if info.ReadingTimeMinutes < 1 {
			info.ReadingTimeMinutes = 1
		}
	}
	info.TextPreview = preview(text)
	return info
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "..."
}

// Filter returns the snapshot files matching the given category (exact, empty
// matches all) and search term (case-insensitive filename substring).
func (snap *Snapshot) Filter(category, search string) []FileInfo {
	search = strings.ToLower(search)
	out := []FileInfo{}
	for _, f := range snap.Files {
		if category != "" && f.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(f.FileName), search) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// TopBySize returns up to n files, largest first.
func (snap *Snapshot) TopBySize(n int) []FileInfo {
	return snap.top(n, func(a, b FileInfo) bool { return a.FileSize > b.FileSize })
}

// TopByReadingTime returns up to n files, longest read first.
func (snap *Snapshot) TopByReadingTime(n int) []FileInfo {
	return snap.top(n, func(a, b FileInfo) bool { return a.ReadingTimeMinutes > b.ReadingTimeMinutes })
}

func (snap *Snapshot) top(n int, less func(a, b FileInfo) bool) []FileInfo {
	out := make([]FileInfo, len(snap.Files))
	copy(out, snap.Files)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
