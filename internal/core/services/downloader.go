package services

import (
	"context"

	"github.com/rs/zerolog"

	"ytgrab/internal/core/domain"
	"ytgrab/internal/core/ports"
	"ytgrab/internal/observability/metrics"
)

type downloadService struct {
	primary  ports.Downloader
	fallback ports.Downloader
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewDownloadService wires the two strategies behind the single-fallback
// policy: the library extractor runs first, and any failure at all hands
// the URL to the yt-dlp subprocess. The fallback's result or error is
// terminal.
func NewDownloadService(primary, fallback ports.Downloader, logger zerolog.Logger, m *metrics.Metrics) ports.DownloadService {
	return &downloadService{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		metrics:  m,
	}
}

func (s *downloadService) Download(ctx context.Context, url string) (*domain.Download, error) {
	done := s.metrics.DownloadStarted()

	dl, err := s.primary.Download(ctx, url)
	if err == nil {
		done("library", "success", dl.Size)
		return dl, nil
	}

	s.logger.Warn().Err(err).Str("url", url).Msg("library extractor failed, falling back to yt-dlp")

	dl, err = s.fallback.Download(ctx, url)
	if err != nil {
		done("ytdlp", "error", 0)
		return nil, err
	}

	done("ytdlp", "success", dl.Size)
	return dl, nil
}
