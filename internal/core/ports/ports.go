package ports

import (
	"context"

	"ytgrab/internal/core/domain"
)

// Downloader fetches the media at url into the download root. Both
// strategies (library extraction and the yt-dlp subprocess) implement
// this.
type Downloader interface {
	Download(ctx context.Context, url string) (*domain.Download, error)
}

// DownloadService is the driving port for the HTTP surface.
type DownloadService interface {
	Download(ctx context.Context, url string) (*domain.Download, error)
}

// PathResolver validates a caller-supplied path fragment against the
// download root and returns the safe absolute path.
type PathResolver interface {
	Resolve(fragment string) (string, error)
}
