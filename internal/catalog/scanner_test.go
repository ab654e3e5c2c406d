package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScannerScan(t *testing.T) {
	root := t.TempDir()

	// Not real PDFs, so extraction fails; the files must still be listed
	// with the error annotated and sizes counted.
	writeFile(t, filepath.Join(root, "nutrients", "npk_basics.pdf"), "not a pdf")
	writeFile(t, filepath.Join(root, "nutrients", "ph_control.pdf"), "also not a pdf, longer")
	writeFile(t, filepath.Join(root, "pests", "aphids.pdf"), "x")
	writeFile(t, filepath.Join(root, "pests", "notes.txt"), "ignored, wrong extension")
	writeFile(t, filepath.Join(root, "stray.pdf"), "ignored, not inside a category")

	s := NewScanner(root, time.Minute)
	snap, err := s.Rescan(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Files, 3)
	assert.Equal(t, "npk_basics.pdf", snap.Files[0].FileName)
	assert.Equal(t, "nutrients", snap.Files[0].Category)
	assert.NotEmpty(t, snap.Files[0].ScanError)
	assert.Zero(t, snap.Files[0].PageCount)
	assert.Equal(t, int64(9), snap.Files[0].FileSize)

	require.Contains(t, snap.Categories, "nutrients")
	assert.Equal(t, 2, snap.Categories["nutrients"].Files)
	assert.Equal(t, int64(9+22), snap.Categories["nutrients"].TotalSize)
	assert.Equal(t, 1, snap.Categories["pests"].Files)
}

func TestScannerMissingRoot(t *testing.T) {
	s := NewScanner(filepath.Join(t.TempDir(), "does-not-exist"), time.Minute)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Files)
	assert.Empty(t, snap.Categories)
}

func TestScannerCache(t *testing.T) {
	root := t.TempDir()
	s := NewScanner(root, time.Hour)

	first, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	// New file appears, but the cache is still fresh.
	writeFile(t, filepath.Join(root, "pests", "thrips.pdf"), "x")

	cached, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.ScannedAt, cached.ScannedAt)
	assert.Empty(t, cached.Files)

	forced, err := s.Rescan(context.Background())
	require.NoError(t, err)
	assert.Len(t, forced.Files, 1)

	// The forced scan replaced the cache.
	after, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, forced.ScannedAt, after.ScannedAt)
}

func TestScannerExpiredCache(t *testing.T) {
	root := t.TempDir()
	s := NewScanner(root, time.Nanosecond)

	first, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	second, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, second.ScannedAt.After(first.ScannedAt) || second.ScannedAt.Equal(first.ScannedAt))
	assert.NotSame(t, first, second)
}

func TestScannerContextCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pests", "aphids.pdf"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner(root, time.Minute)
	_, err := s.Rescan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		Files: []FileInfo{
			{FileName: "npk_basics.pdf", Category: "nutrients", FileSize: 100, ReadingTimeMinutes: 3},
			{FileName: "ph_control.pdf", Category: "nutrients", FileSize: 400, ReadingTimeMinutes: 1},
			{FileName: "aphid_control.pdf", Category: "pests", FileSize: 250, ReadingTimeMinutes: 7},
		},
	}
}

func TestSnapshotFilter(t *testing.T) {
	snap := testSnapshot()

	all := snap.Filter("", "")
	assert.Len(t, all, 3)

	nutrients := snap.Filter("nutrients", "")
	require.Len(t, nutrients, 2)
	assert.Equal(t, "npk_basics.pdf", nutrients[0].FileName)

	search := snap.Filter("", "CONTROL")
	require.Len(t, search, 2)

	both := snap.Filter("pests", "control")
	require.Len(t, both, 1)
	assert.Equal(t, "aphid_control.pdf", both[0].FileName)

	none := snap.Filter("unknown", "")
	assert.Empty(t, none)
}

func TestSnapshotTopN(t *testing.T) {
	snap := testSnapshot()

	bySize := snap.TopBySize(2)
	require.Len(t, bySize, 2)
	assert.Equal(t, "ph_control.pdf", bySize[0].FileName)
	assert.Equal(t, "aphid_control.pdf", bySize[1].FileName)

	byTime := snap.TopByReadingTime(1)
	require.Len(t, byTime, 1)
	assert.Equal(t, "aphid_control.pdf", byTime[0].FileName)

	// n larger than the file count returns everything.
	assert.Len(t, snap.TopBySize(10), 3)

	// The original ordering is untouched.
	assert.Equal(t, "npk_basics.pdf", snap.Files[0].FileName)
}
