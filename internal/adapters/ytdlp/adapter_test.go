package ytdlp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgrab/internal/core/domain"
)

func TestArgs(t *testing.T) {
	d := &ytDlpDownloader{
		bin:           "yt-dlp",
		downloadDir:   "/downloads",
		socketTimeout: 15 * time.Second,
	}

	args := d.args("https://example.com/watch?v=abc")

	assert.Equal(t, []string{
		"-f", "bv*+ba/b",
		"--merge-output-format", "mp4",
		"--geo-bypass",
		"--socket-timeout", "15",
		"-o", filepath.Join("/downloads", "%(title).200B.%(ext)s"),
		"https://example.com/watch?v=abc",
	}, args)
}

func TestDownload_ToolFailure(t *testing.T) {
	dir := t.TempDir()
	d := NewYtDlpDownloader("ytgrab-test-missing-binary", dir, 15*time.Second, zerolog.Nop())

	_, err := d.Download(context.Background(), "https://example.com/v")

	require.Error(t, err)
	assert.Equal(t, domain.KindToolFailed, domain.ErrorKind(err))
}

func TestNewestFile(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "old.mp4")
	recent := filepath.Join(dir, "recent.mp4")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(recent, []byte("recent"), 0o644))

	base := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, base, base))
	require.NoError(t, os.Chtimes(recent, base.Add(time.Minute), base.Add(time.Minute)))

	// Subdirectories are not download results.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	got, err := newestFile(dir)

	require.NoError(t, err)
	assert.Equal(t, "recent.mp4", filepath.Base(got.path))
	assert.True(t, filepath.IsAbs(got.path))
	assert.Equal(t, int64(len("recent")), got.size)
}

func TestNewestFile_EmptyDir(t *testing.T) {
	_, err := newestFile(t.TempDir())
	assert.Error(t, err)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail([]byte("  short \n"), 1000))

	long := strings.Repeat("x", 2000) + "END"
	got := tail([]byte(long), 1000)
	assert.Len(t, got, 1000)
	assert.True(t, strings.HasSuffix(got, "END"))
}

func TestTail_KeepsRuneBoundaries(t *testing.T) {
	// yt-dlp output carries titles in any script; the cut must not land
	// inside a multi-byte rune.
	long := strings.Repeat("日", 400) // 3 bytes each
	got := tail([]byte(long), 1000)

	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 1000)
	assert.True(t, strings.HasSuffix(got, "日"))
}
