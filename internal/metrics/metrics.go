// Package metrics records per-run counters and exports them in the Prometheus text format,
// suitable for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "broken"

// Recorder collects the metrics of one run. The zero value is not usable; use New.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	files    *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	blocks   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a recorder backed by its own registry.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		files: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files handled, by operation and outcome.",
		}, []string{"op", "status"}),
		bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Bytes written, by operation.",
		}, []string{"op"}),
		blocks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Cipher blocks processed, by operation.",
		}, []string{"op"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Time spent per file, by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"op"}),
	}
}

// Gatherer exposes the recorded metrics. A nil recorder gathers nothing.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}

	return r.registry
}

// Success records a processed file.
func (r *Recorder) Success(op string, blocks int, size int64, elapsed time.Duration) {
	if r == nil {
		return
	}

	r.files.WithLabelValues(op, "ok").Inc()
	r.blocks.WithLabelValues(op).Add(float64(blocks))
	r.bytes.WithLabelValues(op).Add(float64(size))
	r.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Failure records a file whose processing failed.
func (r *Recorder) Failure(op string, elapsed time.Duration) {
	if r == nil {
		return
	}

	r.files.WithLabelValues(op, "error").Inc()
	r.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// WriteTextfile writes all metrics to path atomically. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, r.Gatherer()); err != nil {
		return fmt.Errorf("writing metrics to %q: %w", path, err)
	}

	return nil
}
