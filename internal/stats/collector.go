package stats

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pavelc4/aether-media-bot/internal/engine"
	"github.com/pavelc4/aether-media-bot/internal/session"
)

const namespace = "aether"

// Collector records bot activity both as Prometheus series and as an
// in-process tally used by /stats.
type Collector struct {
	registry *prometheus.Registry

	events            *prometheus.CounterVec
	downloads         *prometheus.CounterVec
	downloadBytes     *prometheus.CounterVec
	downloadDuration  *prometheus.HistogramVec
	searches          *prometheus.CounterVec
	rateLimited       prometheus.Counter
	dispatcherPending prometheus.GaugeFunc

	mu    sync.RWMutex
	tally Snapshot
	start time.Time
}

var _ engine.Metrics = (*Collector)(nil)

// NewCollector builds a collector with its own registry. pending, when not
// nil, is sampled on every scrape as the dispatcher backlog.
func NewCollector(pending func() int) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Inbound events by session state and recognised command",
		}, []string{"state", "command"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Download attempts by category, media kind and outcome",
		}, []string{"category", "kind", "outcome"}),
		downloadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Bytes delivered to users",
		}, []string{"category"}),
		downloadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "download_duration_seconds",
			Help:      "Time from download start to delivery",
			Buckets:   []float64{1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"category"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches by kind and outcome",
		}, []string{"kind", "outcome"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Inbound events dropped by the per-user rate limiter",
		}),
		start: time.Now(),
	}
	c.tally.Categories = make(map[string]int64)

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.events,
		c.downloads,
		c.downloadBytes,
		c.downloadDuration,
		c.searches,
		c.rateLimited,
	)
	if pending != nil {
		c.dispatcherPending = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatcher_pending_events",
			Help:      "Events waiting in per-user mailboxes",
		}, func() float64 { return float64(pending()) })
		c.registry.MustRegister(c.dispatcherPending)
	}
	return c
}

func (c *Collector) Event(state session.State, cmd engine.Command) {
	c.events.WithLabelValues(string(state), cmd.String()).Inc()

	c.mu.Lock()
	c.tally.Events++
	c.mu.Unlock()
}

func (c *Collector) Download(category, kind, outcome string, size int64, took time.Duration) {
	c.downloads.WithLabelValues(category, kind, outcome).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if outcome != "ok" {
		c.tally.FailedDownloads++
		return
	}
	c.downloadBytes.WithLabelValues(category).Add(float64(size))
	c.downloadDuration.WithLabelValues(category).Observe(took.Seconds())

	c.tally.Downloads++
	c.tally.TotalBytes += size
	c.tally.totalDuration += took
	c.tally.Categories[category]++
	c.tally.LastDownload = time.Now()
}

func (c *Collector) Search(kind, outcome string) {
	c.searches.WithLabelValues(kind, outcome).Inc()

	c.mu.Lock()
	c.tally.Searches++
	c.mu.Unlock()
}

// RateLimited counts an event dropped before it reached the engine.
func (c *Collector) RateLimited() {
	c.rateLimited.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
