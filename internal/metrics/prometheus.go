// Package metrics exposes download tracker lifecycle metrics in the
// Prometheus format.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ytget/downbad/internal/model"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "downbad"

// Line outcomes used as label values
const (
	lineMatched = "matched"
	lineIgnored = "ignored"
)

// PrometheusMetrics implements download.Metrics with its own registry so
// several instances can coexist in tests.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	submittedTotal  prometheus.Counter
	finishedTotal   *prometheus.CounterVec
	removedTotal    *prometheus.CounterVec
	linesTotal      *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
	active          prometheus.Gauge
}

// New creates and registers the tracker collectors.
//
// Registered metrics:
//   - {namespace}_downloads_submitted_total
//   - {namespace}_downloads_finished_total{status}
//   - {namespace}_downloads_removed_total{status}
//   - {namespace}_output_lines_total{result}
//   - {namespace}_download_duration_seconds{status}
//   - {namespace}_downloads_active
func New(namespace string) *PrometheusMetrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &PrometheusMetrics{registry: prometheus.NewRegistry()}

	m.submittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: fmt.Sprintf("%s_downloads_submitted_total", namespace),
		Help: "Total accepted download submissions",
	})

	m.finishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_downloads_finished_total", namespace),
			Help: "Total downloads that reached a terminal status",
		},
		[]string{"status"},
	)

	m.removedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_downloads_removed_total", namespace),
			Help: "Total records removed from the list",
		},
		[]string{"status"},
	)

	m.linesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_output_lines_total", namespace),
			Help: "Downloader stdout lines by parse result",
		},
		[]string{"result"},
	)

	// Buckets: 5s .. ~85min
	m.durationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_download_duration_seconds", namespace),
			Help:    "Time from process start to terminal status",
			Buckets: prometheus.ExponentialBuckets(5, 2, 11),
		},
		[]string{"status"},
	)

	m.active = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: fmt.Sprintf("%s_downloads_active", namespace),
		Help: "Downloads with a running process",
	})

	m.registry.MustRegister(
		m.submittedTotal,
		m.finishedTotal,
		m.removedTotal,
		m.linesTotal,
		m.durationSeconds,
		m.active,
	)

	return m
}

// Registry returns the registry holding the tracker collectors
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PrometheusMetrics) RecordSubmitted() {
	m.submittedTotal.Inc()
}

func (m *PrometheusMetrics) RecordStarted() {
	m.active.Inc()
}

// RecordFinished counts a terminal transition. Only records that were
// downloading held a slot in the active gauge.
func (m *PrometheusMetrics) RecordFinished(from, to model.Status, elapsed time.Duration) {
	m.finishedTotal.WithLabelValues(to.String()).Inc()
	if from == model.StatusDownloading {
		m.active.Dec()
	}
	if elapsed > 0 {
		m.durationSeconds.WithLabelValues(to.String()).Observe(elapsed.Seconds())
	}
}

// RecordRemoved counts a removal. A removed downloading record never reports
// its exit, so it gives up its active slot here.
func (m *PrometheusMetrics) RecordRemoved(status model.Status) {
	m.removedTotal.WithLabelValues(status.String()).Inc()
	if status == model.StatusDownloading {
		m.active.Dec()
	}
}

func (m *PrometheusMetrics) RecordLine(matched bool) {
	if matched {
		m.linesTotal.WithLabelValues(lineMatched).Inc()
		return
	}
	m.linesTotal.WithLabelValues(lineIgnored).Inc()
}
