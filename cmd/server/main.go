package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/rs/zerolog"

	"ytgrab/internal/adapters/handlers"
	"ytgrab/internal/adapters/youtube"
	"ytgrab/internal/adapters/ytdlp"
	"ytgrab/internal/config"
	"ytgrab/internal/core/services"
	"ytgrab/internal/observability/metrics"
)

type cliArgs struct {
	Addr        string `arg:"--addr" help:"listen address, overrides YTGRAB_ADDR"`
	DownloadDir string `arg:"--download-dir" help:"download root, overrides YTGRAB_DOWNLOAD_DIR"`
	EnvFile     string `arg:"--env-file" help:"path to a .env file"`
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	var args cliArgs
	arg.MustParse(&args)

	cfg, err := config.Load(args.EnvFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading configuration")
	}
	if args.Addr != "" {
		cfg.Addr = args.Addr
	}
	if args.DownloadDir != "" {
		dir, err := config.EnsureDownloadDir(args.DownloadDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("creating download directory")
		}
		cfg.DownloadDir = dir
	}

	// Driven adapters
	library := youtube.NewLibraryDownloader(cfg.DownloadDir, logger)
	fallback := ytdlp.NewYtDlpDownloader(cfg.YtDlpBin, cfg.DownloadDir, cfg.SocketTimeout, logger)

	// Core services
	m := metrics.New()
	dlService := services.NewDownloadService(library, fallback, logger, m)
	resolver := services.NewPathResolver(cfg.DownloadDir)

	// Driving adapter
	handler := handlers.NewHTTPHandler(dlService, resolver, m, logger, cfg.DiagHost, cfg.DiagTimeout)

	server := &http.Server{
		Addr:        cfg.Addr,
		Handler:     handler.Router(),
		ReadTimeout: 30 * time.Second,
		// Downloads run inside request handlers, so writes are unbounded.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("download_dir", cfg.DownloadDir).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
