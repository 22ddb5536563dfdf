// Package handlers is the HTTP surface: download routes, the
// path-scoped file server, health and diagnostics.
package handlers

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ytgrab/internal/core/domain"
	"ytgrab/internal/core/ports"
	"ytgrab/internal/observability/metrics"
)

const usage = "OK. POST /download {url} or POST /api/predict/download {data:[url]}. You can also GET /download?url=..."

type HTTPHandler struct {
	service     ports.DownloadService
	resolver    ports.PathResolver
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	diagHost    string
	diagTimeout time.Duration
}

func NewHTTPHandler(service ports.DownloadService, resolver ports.PathResolver, m *metrics.Metrics, logger zerolog.Logger, diagHost string, diagTimeout time.Duration) *HTTPHandler {
	return &HTTPHandler{
		service:     service,
		resolver:    resolver,
		metrics:     m,
		logger:      logger,
		diagHost:    diagHost,
		diagTimeout: diagTimeout,
	}
}

// Router assembles the gin engine with CORS, request logging and all
// routes registered.
func (h *HTTPHandler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(h.requestLogger())

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, usage)
	})
	engine.GET("/health", h.handleHealth)
	engine.GET("/diag", h.handleDiag)
	engine.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	engine.POST("/download", h.handleDownload)
	engine.GET("/download", h.handleDownloadGet)
	engine.POST("/api/predict/download", h.handlePredictDownload)

	// Gin cannot route a literal "/file=" prefix, so the legacy shape
	// is caught in NoRoute below.
	engine.GET("/file/*path", func(c *gin.Context) {
		h.serveFile(c, c.Param("path"))
	})
	engine.NoRoute(func(c *gin.Context) {
		if path, ok := strings.CutPrefix(c.Request.URL.Path, "/file="); ok && c.Request.Method == http.MethodGet {
			h.serveFile(c, path)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return engine
}

// corsMiddleware leaves the API fully open so the browser extension can
// call it from any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (h *HTTPHandler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)
		c.Next()
		h.logger.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

func (h *HTTPHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleDiag checks DNS resolution and a TCP dial to the diagnostic
// host from inside the container. Operational triage only.
func (h *HTTPHandler) handleDiag(c *gin.Context) {
	info := gin.H{}

	addrs, err := net.DefaultResolver.LookupHost(c.Request.Context(), h.diagHost)
	if err != nil {
		info["error"] = fmt.Sprintf("%T: %v", err, err)
		c.JSON(http.StatusOK, info)
		return
	}
	info["getaddrinfo"] = addrs

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(h.diagHost, "443"), h.diagTimeout)
	if err != nil {
		info["error"] = fmt.Sprintf("%T: %v", err, err)
		c.JSON(http.StatusOK, info)
		return
	}
	conn.Close()
	info["tcp443"] = "ok"

	c.JSON(http.StatusOK, info)
}

type downloadRequest struct {
	URL string `json:"url"`
}

type downloadResponse struct {
	Title     string `json:"title"`
	File      string `json:"file"`
	PublicURL string `json:"public_url"`
	Size      string `json:"size,omitempty"`
	Status    string `json:"status"`
}

func (h *HTTPHandler) handleDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
		return
	}
	h.runDownload(c, req.URL, "Downloaded successfully")
}

func (h *HTTPHandler) handleDownloadGet(c *gin.Context) {
	h.runDownload(c, c.Query("url"), "Downloaded successfully (GET)")
}

func (h *HTTPHandler) runDownload(c *gin.Context, url, status string) {
	url = strings.TrimSpace(url)
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
		return
	}

	dl, err := h.service.Download(c.Request.Context(), url)
	if err != nil {
		h.logger.Error().Err(err).Str("url", url).Msg("download failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, downloadResponse{
		Title:     dl.Title,
		File:      dl.Path,
		PublicURL: dl.PublicURL(),
		Size:      humanSize(dl.Size),
		Status:    status,
	})
}

type predictRequest struct {
	Data []string `json:"data"`
	URL  string   `json:"url"`
}

// handlePredictDownload speaks the gradio-style prediction shape:
// {"data": [descriptor, status string, public url]}.
func (h *HTTPHandler) handlePredictDownload(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Bad payload. Use {data:[<url>]} or {url:<url>}",
			"data":  []any{},
		})
		return
	}

	url := req.URL
	if len(req.Data) > 0 && req.Data[0] != "" {
		url = req.Data[0]
	}
	url = strings.TrimSpace(url)
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Bad payload. Use {data:[<url>]} or {url:<url>}",
			"data":  []any{},
		})
		return
	}

	dl, err := h.service.Download(c.Request.Context(), url)
	if err != nil {
		h.logger.Error().Err(err).Str("url", url).Msg("download failed")
		msg := domain.ErrorMessage(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": msg,
			"data":  []any{nil, "Error: " + msg},
		})
		return
	}

	ref := dl.PublicURL()
	c.JSON(http.StatusOK, gin.H{
		"data": []any{
			dl.Describe(),
			fmt.Sprintf("Downloaded '%s' successfully!", dl.Title),
			ref,
		},
	})
}

func (h *HTTPHandler) serveFile(c *gin.Context, fragment string) {
	path, err := h.resolver.Resolve(fragment)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrEmptyPath):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrForbiddenPath):
			status = http.StatusForbidden
		case errors.Is(err, domain.ErrFileNotFound):
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.FileAttachment(path, filepath.Base(path))
}

func humanSize(size int64) string {
	if size <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(size))
}
