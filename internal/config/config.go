// Package config loads process configuration from flags, environment
// variables and an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and passed explicitly to the
// components that need it; nothing reads the environment afterwards.
type Config struct {
	Addr          string
	DownloadDir   string
	YtDlpBin      string
	SocketTimeout time.Duration
	DiagHost      string
	DiagTimeout   time.Duration
}

// Load reads an optional .env file, then the environment, and fills in
// defaults. The download directory is created if absent.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		// Best effort: a missing .env is not an error.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Addr:          getEnv("YTGRAB_ADDR", ":8081"),
		DownloadDir:   getEnv("YTGRAB_DOWNLOAD_DIR", defaultDownloadDir()),
		YtDlpBin:      getEnv("YTGRAB_YTDLP_BIN", "yt-dlp"),
		SocketTimeout: getDuration("YTGRAB_SOCKET_TIMEOUT", 15*time.Second),
		DiagHost:      getEnv("YTGRAB_DIAG_HOST", "www.youtube.com"),
		DiagTimeout:   getDuration("YTGRAB_DIAG_TIMEOUT", 3*time.Second),
	}

	dir, err := EnsureDownloadDir(cfg.DownloadDir)
	if err != nil {
		return nil, err
	}
	cfg.DownloadDir = dir

	return cfg, nil
}

// EnsureDownloadDir creates the download root if absent and returns its
// canonical (absolute, symlink-free) path. Every component gets the same
// canonical root, so paths written by the strategies compare cleanly in
// the resolver even when the configured directory sits behind a symlink
// (the os.TempDir fallback does on some hosts).
func EnsureDownloadDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving download directory: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving download directory: %w", err)
	}
	return resolved, nil
}

// defaultDownloadDir prefers the persistent /data mount when the
// deployment provides one, falling back to the system temp directory.
func defaultDownloadDir() string {
	root := os.TempDir()
	if info, err := os.Stat("/data"); err == nil && info.IsDir() {
		root = "/data"
	}
	return filepath.Join(root, "youtube_downloads")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
