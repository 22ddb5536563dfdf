package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("YTGRAB_DOWNLOAD_DIR", filepath.Join(t.TempDir(), "downloads"))

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, "yt-dlp", cfg.YtDlpBin)
	assert.Equal(t, 15*time.Second, cfg.SocketTimeout)
	assert.Equal(t, "www.youtube.com", cfg.DiagHost)
}

func TestLoad_CreatesDownloadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	t.Setenv("YTGRAB_DOWNLOAD_DIR", dir)

	cfg, err := Load("")

	require.NoError(t, err)
	info, statErr := os.Stat(cfg.DownloadDir)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
	assert.True(t, filepath.IsAbs(cfg.DownloadDir))
}

func TestLoad_CanonicalizesSymlinkedDownloadDir(t *testing.T) {
	base := t.TempDir()
	real := filepath.Join(base, "real")
	require.NoError(t, os.Mkdir(real, 0o755))
	sym := filepath.Join(base, "sym")
	require.NoError(t, os.Symlink(real, sym))

	t.Setenv("YTGRAB_DOWNLOAD_DIR", filepath.Join(sym, "downloads"))

	cfg, err := Load("")

	require.NoError(t, err)
	expected, err := filepath.EvalSymlinks(filepath.Join(real, "downloads"))
	require.NoError(t, err)
	assert.Equal(t, expected, cfg.DownloadDir, "strategies and resolver must share the canonical root")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("YTGRAB_DOWNLOAD_DIR", t.TempDir())
	t.Setenv("YTGRAB_ADDR", ":9000")
	t.Setenv("YTGRAB_YTDLP_BIN", "/opt/yt-dlp")
	t.Setenv("YTGRAB_SOCKET_TIMEOUT", "30s")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "/opt/yt-dlp", cfg.YtDlpBin)
	assert.Equal(t, 30*time.Second, cfg.SocketTimeout)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile,
		[]byte("YTGRAB_ADDR=:7070\nYTGRAB_DOWNLOAD_DIR="+t.TempDir()+"\n"), 0o644))

	cfg, err := Load(envFile)

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}
