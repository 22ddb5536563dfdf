package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgrab/internal/core/domain"
	"ytgrab/internal/observability/metrics"
)

type fakeDownloader struct {
	calls  int
	result *domain.Download
	err    error
}

func (f *fakeDownloader) Download(_ context.Context, _ string) (*domain.Download, error) {
	f.calls++
	return f.result, f.err
}

func TestDownloadService_PrimarySucceeds(t *testing.T) {
	primary := &fakeDownloader{result: &domain.Download{Path: "/tmp/a.mp4", Title: "a", Size: 10}}
	fallback := &fakeDownloader{}
	svc := NewDownloadService(primary, fallback, zerolog.Nop(), metrics.New())

	dl, err := svc.Download(context.Background(), "https://example.com/v")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.mp4", dl.Path)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls, "fallback must not run when the primary succeeds")
}

func TestDownloadService_FallbackOnPrimaryFailure(t *testing.T) {
	primary := &fakeDownloader{err: domain.NewDownloadError(domain.KindNoStream, errors.New("no progressive MP4 stream found"))}
	fallback := &fakeDownloader{result: &domain.Download{Path: "/tmp/b.mp4", Title: "b", Size: 20}}
	svc := NewDownloadService(primary, fallback, zerolog.Nop(), metrics.New())

	dl, err := svc.Download(context.Background(), "https://example.com/v")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/b.mp4", dl.Path)
	assert.Equal(t, 1, primary.calls, "primary must not be retried")
	assert.Equal(t, 1, fallback.calls)
}

func TestDownloadService_BothFail(t *testing.T) {
	primary := &fakeDownloader{err: errors.New("boom")}
	fallback := &fakeDownloader{err: domain.NewDownloadError(domain.KindToolFailed, errors.New("yt-dlp failed: exit status 1"))}
	svc := NewDownloadService(primary, fallback, zerolog.Nop(), metrics.New())

	dl, err := svc.Download(context.Background(), "https://example.com/v")

	require.Error(t, err)
	assert.Nil(t, dl)
	assert.Equal(t, domain.KindToolFailed, domain.ErrorKind(err), "the fallback's error is terminal")
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}
