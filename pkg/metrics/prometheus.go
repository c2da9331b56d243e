package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ingested        *prometheus.CounterVec
	skipped         *prometheus.CounterVec
	failed          *prometheus.CounterVec
	classifications *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ingested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_posts_ingested_total",
				Help: "Total number of posts ingested",
			},
			[]string{"channel"},
		),
		skipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_items_skipped_total",
				Help: "Total number of items skipped before classification",
			},
			[]string{"reason"},
		),
		failed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_pipeline_failures_total",
				Help: "Total number of pipeline stage failures",
			},
			[]string{"stage"},
		),
		classifications: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_classifications_total",
				Help: "Total classifications by predicted label",
			},
			[]string{"label"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_operation_duration_seconds",
				Help:    "Duration of pipeline operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordIngested records a post stored for a feed channel.
func (r *Recorder) RecordIngested(channel string) {
	r.ingested.WithLabelValues(channel).Inc()
}

// RecordSkipped records an item skipped before classification.
func (r *Recorder) RecordSkipped(reason string) {
	r.skipped.WithLabelValues(reason).Inc()
}

// RecordFailed records a pipeline stage failure.
func (r *Recorder) RecordFailed(stage string) {
	r.failed.WithLabelValues(stage).Inc()
}

// RecordClassification records a classifier prediction.
func (r *Recorder) RecordClassification(label string) {
	r.classifications.WithLabelValues(label).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
