package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects and exposes metrics
type Collector struct {
	registry      *prometheus.Registry
	filesTotal    *prometheus.CounterVec
	attemptsTotal prometheus.Counter
	pagesTotal    prometheus.Counter
	duration      prometheus.Histogram
}

// New creates a new metrics collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversion_files_total",
				Help: "Total number of files resolved, by terminal status",
			},
			[]string{"status"},
		),
		attemptsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "conversion_attempts_total",
				Help: "Total number of conversion attempts",
			},
		),
		pagesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "conversion_pages_total",
				Help: "Total pages of extracted text written",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "conversion_file_duration_seconds",
				Help:    "Time taken to fully resolve one file",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	c.registry.MustRegister(c.filesTotal)
	c.registry.MustRegister(c.attemptsTotal)
	c.registry.MustRegister(c.pagesTotal)
	c.registry.MustRegister(c.duration)

	return c
}

// IncSuccess increments the successfully converted file counter
func (c *Collector) IncSuccess() {
	c.filesTotal.WithLabelValues("success").Inc()
}

// IncFailed increments the exhausted-failure file counter
func (c *Collector) IncFailed() {
	c.filesTotal.WithLabelValues("failed").Inc()
}

// IncSkipped increments the counter of files skipped as already converted
func (c *Collector) IncSkipped() {
	c.filesTotal.WithLabelValues("skipped").Inc()
}

// IncAttempt increments the attempt counter
func (c *Collector) IncAttempt() {
	c.attemptsTotal.Inc()
}

// AddPages adds to the total extracted page count
func (c *Collector) AddPages(pages int) {
	c.pagesTotal.Add(float64(pages))
}

// ObserveDuration observes how long one file took to resolve
func (c *Collector) ObserveDuration(duration time.Duration) {
	c.duration.Observe(duration.Seconds())
}

// StartServer starts the metrics HTTP server
func (c *Collector) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}
