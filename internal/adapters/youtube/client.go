// Package youtube is the library-based download strategy. It pulls a
// single progressive (audio+video muxed) stream with kkdai/youtube, so
// no merging step is needed afterwards.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	"ytgrab/internal/core/domain"
	"ytgrab/internal/core/ports"
)

type libraryDownloader struct {
	client      youtube.Client
	downloadDir string
	logger      zerolog.Logger
}

// NewLibraryDownloader builds the kkdai/youtube strategy writing into
// downloadDir.
func NewLibraryDownloader(downloadDir string, logger zerolog.Logger) ports.Downloader {
	return &libraryDownloader{
		client:      youtube.Client{},
		downloadDir: downloadDir,
		logger:      logger,
	}
}

func (d *libraryDownloader) Download(ctx context.Context, url string) (*domain.Download, error) {
	video, err := d.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, domain.NewDownloadError(domain.KindNoStream, fmt.Errorf("fetching video info: %w", err))
	}

	format := selectProgressive(video.Formats)
	if format == nil {
		return nil, domain.NewDownloadError(domain.KindNoStream, errors.New("no progressive MP4 stream found"))
	}

	stream, _, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, domain.NewDownloadError(domain.KindNoStream, fmt.Errorf("opening stream: %w", err))
	}
	defer stream.Close()

	name := sanitizeFilename(video.Title)
	if name == "" {
		name = video.ID
	}
	path := filepath.Join(d.downloadDir, name+extensionFor(format))

	written, err := writeTo(path, stream)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	title := video.Title
	if title == "" {
		title = filepath.Base(abs)
	}

	d.logger.Info().Str("file", abs).Int64("bytes", written).Msg("library download complete")
	return &domain.Download{Path: abs, Title: title, Size: written}, nil
}

// writeTo copies the stream to path and reports the bytes actually
// written, never the stream's advertised length.
func writeTo(path string, stream io.Reader) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, stream)
	if err != nil {
		return 0, fmt.Errorf("writing stream: %w", err)
	}
	return written, nil
}

// selectProgressive picks the highest-resolution format carrying both
// audio and video in one file. If that first pass finds nothing, a
// second pass restricts to MP4 for container compatibility.
func selectProgressive(formats youtube.FormatList) *youtube.Format {
	if f := bestProgressive(formats, false); f != nil {
		return f
	}
	return bestProgressive(formats, true)
}

func bestProgressive(formats youtube.FormatList, mp4Only bool) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 || !strings.HasPrefix(f.MimeType, "video/") {
			continue
		}
		if mp4Only && !strings.HasPrefix(f.MimeType, "video/mp4") {
			continue
		}
		if best == nil || f.Height > best.Height {
			best = f
		}
	}
	return best
}

func extensionFor(f *youtube.Format) string {
	switch {
	case strings.HasPrefix(f.MimeType, "video/webm"):
		return ".webm"
	case strings.HasPrefix(f.MimeType, "video/3gpp"):
		return ".3gp"
	default:
		return ".mp4"
	}
}

// sanitizeFilename strips path separators and characters that commonly
// break filesystems from a media title.
func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '\x00':
			return '-'
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}
