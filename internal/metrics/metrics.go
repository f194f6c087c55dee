// Package metrics exposes the bot's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector struct {
	linksReceived    prometheus.Counter
	resolves         *prometheus.CounterVec
	downloads        *prometheus.CounterVec
	downloadBytes    prometheus.Counter
	downloadDuration prometheus.Histogram
	uploads          *prometheus.CounterVec
	verifications    *prometheus.CounterVec
	activeDownloads  prometheus.Gauge
}

func NewCollector() *Collector {
	return &Collector{
		linksReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "teraleech_links_received_total",
			Help: "Total number of Terabox links received",
		}),
		resolves: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "teraleech_resolves_total",
			Help: "Link resolutions by provider and outcome",
		}, []string{"provider", "outcome"}),
		downloads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "teraleech_downloads_total",
			Help: "File downloads by outcome",
		}, []string{"outcome"}),
		downloadBytes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "teraleech_download_bytes_total",
			Help: "Total bytes downloaded",
		}),
		downloadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "teraleech_download_duration_seconds",
			Help:    "Download duration",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		uploads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "teraleech_uploads_total",
			Help: "Telegram uploads by media type",
		}, []string{"media_type"}),
		verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "teraleech_verifications_total",
			Help: "Verification redemptions by outcome",
		}, []string{"outcome"}),
		activeDownloads: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "teraleech_active_downloads",
			Help: "Downloads currently in flight",
		}),
	}
}

func (c *Collector) LinkReceived() { c.linksReceived.Inc() }

func (c *Collector) ResolveOK(provider string) {
	c.resolves.WithLabelValues(provider, "success").Inc()
}

func (c *Collector) ResolveFailed() { c.resolves.WithLabelValues("none", "failure").Inc() }

func (c *Collector) DownloadOK(bytes int64, d time.Duration) {
	c.downloads.WithLabelValues("success").Inc()
	c.downloadBytes.Add(float64(bytes))
	c.downloadDuration.Observe(d.Seconds())
}

func (c *Collector) DownloadFailed() { c.downloads.WithLabelValues("failure").Inc() }

func (c *Collector) DownloadCancelled() { c.downloads.WithLabelValues("cancelled").Inc() }

func (c *Collector) Uploaded(mediaType string) { c.uploads.WithLabelValues(mediaType).Inc() }

func (c *Collector) VerificationOK() { c.verifications.WithLabelValues("success").Inc() }

func (c *Collector) VerificationFailed() { c.verifications.WithLabelValues("failure").Inc() }

func (c *Collector) DownloadStarted() { c.activeDownloads.Inc() }

func (c *Collector) DownloadFinished() { c.activeDownloads.Dec() }
