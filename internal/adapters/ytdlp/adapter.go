// Package ytdlp is the subprocess-based download strategy and the
// fallback when library extraction fails. yt-dlp fetches the best
// separate video and audio streams and merges them into MP4 itself.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alessio/shellescape"
	"github.com/rs/zerolog"

	"ytgrab/internal/core/domain"
	"ytgrab/internal/core/ports"
)

// outputTail bounds the diagnostic output attached to tool failures.
const outputTail = 1000

type ytDlpDownloader struct {
	bin           string
	downloadDir   string
	socketTimeout time.Duration
	logger        zerolog.Logger
}

// NewYtDlpDownloader builds the yt-dlp strategy. bin is the executable
// path ("yt-dlp" resolves via PATH), socketTimeout bounds each network
// read inside the tool.
func NewYtDlpDownloader(bin, downloadDir string, socketTimeout time.Duration, logger zerolog.Logger) ports.Downloader {
	return &ytDlpDownloader{
		bin:           bin,
		downloadDir:   downloadDir,
		socketTimeout: socketTimeout,
		logger:        logger,
	}
}

func (d *ytDlpDownloader) args(url string) []string {
	// Title is length-capped in the output template so merged files
	// don't exceed filename limits.
	outTmpl := filepath.Join(d.downloadDir, "%(title).200B.%(ext)s")
	return []string{
		"-f", "bv*+ba/b",
		"--merge-output-format", "mp4",
		"--geo-bypass",
		"--socket-timeout", strconv.Itoa(int(d.socketTimeout.Seconds())),
		"-o", outTmpl,
		url,
	}
}

func (d *ytDlpDownloader) Download(ctx context.Context, url string) (*domain.Download, error) {
	args := d.args(url)
	d.logger.Info().Str("cmd", shellescape.QuoteCommand(append([]string{d.bin}, args...))).Msg("invoking yt-dlp")

	// Argument-list invocation: the URL never passes through a shell.
	cmd := exec.CommandContext(ctx, d.bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, domain.NewDownloadError(domain.KindToolFailed,
			fmt.Errorf("yt-dlp failed: %s", tail(out, outputTail)))
	}

	// Parity heuristic: attribute the newest file in the download root
	// to this invocation. Cross-attribution is possible when two
	// subprocess downloads finish at once.
	newest, err := newestFile(d.downloadDir)
	if err != nil {
		return nil, domain.NewDownloadError(domain.KindToolFailed,
			fmt.Errorf("locating downloaded file: %w", err))
	}

	title := strings.TrimSuffix(filepath.Base(newest.path), filepath.Ext(newest.path))
	d.logger.Info().Str("file", newest.path).Int64("bytes", newest.size).Msg("yt-dlp download complete")
	return &domain.Download{Path: newest.path, Title: title, Size: newest.size}, nil
}

type fileInfo struct {
	path    string
	size    int64
	modTime time.Time
}

func newestFile(dir string) (*fileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var newest *fileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if newest == nil || info.ModTime().After(newest.modTime) {
			newest = &fileInfo{path: abs, size: info.Size(), modTime: info.ModTime()}
		}
	}
	if newest == nil {
		return nil, errors.New("download directory is empty")
	}
	return newest, nil
}

func tail(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	cut := len(s) - n
	// Don't split a multi-byte rune; the tail ends up in JSON payloads.
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}
