// Package metrics collects Prometheus metrics for the download service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private
// registry so tests can build isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	downloadsTotal  *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
	fileSizeBytes   prometheus.Histogram
	inProgress      prometheus.Gauge
}

// New builds and registers the collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytgrab_downloads_total",
			Help: "Download attempts by strategy and status",
		},
		[]string{"strategy", "status"},
	)

	m.durationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytgrab_download_duration_seconds",
			Help:    "Download duration per strategy",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	m.fileSizeBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "ytgrab_file_size_bytes",
			Help: "Sizes of completed downloads",
			Buckets: []float64{
				1 << 20,   // 1MB
				10 << 20,  // 10MB
				50 << 20,  // 50MB
				100 << 20, // 100MB
				500 << 20, // 500MB
				1 << 30,   // 1GB
			},
		},
	)

	m.inProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ytgrab_downloads_in_progress",
			Help: "Downloads currently running",
		},
	)

	m.registry.MustRegister(m.downloadsTotal, m.durationSeconds, m.fileSizeBytes, m.inProgress)
	return m
}

// DownloadStarted marks a download in flight and returns a done
// callback to record its outcome.
func (m *Metrics) DownloadStarted() func(strategy, status string, size int64) {
	start := time.Now()
	m.inProgress.Inc()
	return func(strategy, status string, size int64) {
		m.inProgress.Dec()
		m.downloadsTotal.WithLabelValues(strategy, status).Inc()
		m.durationSeconds.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
		if size > 0 {
			m.fileSizeBytes.Observe(float64(size))
		}
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
