package metrics

import (
	"time"

	"github.com/mikey/mail-insight/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mail_insight"

// Recorder implements core.Metrics with prometheus collectors
type Recorder struct {
	generations       *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
	backoffs          *prometheus.CounterVec
	backoffSeconds    *prometheus.CounterVec
	decodeFailures    prometheus.Counter
	categorized       *prometheus.CounterVec
	batches           *prometheus.CounterVec
	runs              *prometheus.CounterVec
	runDuration       prometheus.Histogram
}

// NewRecorder registers the pipeline collectors with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_attempts_total",
				Help:      "Generation attempts by model and outcome",
			},
			[]string{"model", "outcome"},
		),
		generationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Generation call latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2m
			},
			[]string{"model"},
		),
		backoffs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backoff_sleeps_total",
				Help:      "Backoff sleeps taken after transient failures",
			},
			[]string{"model"},
		),
		backoffSeconds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backoff_seconds_total",
				Help:      "Time spent in backoff sleeps",
			},
			[]string{"model"},
		),
		decodeFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decode_failures_total",
				Help:      "Model responses that could not be decoded",
			},
		),
		categorized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_categorized_total",
				Help:      "Analysis records filed into each category",
			},
			[]string{"category"},
		),
		batches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_total",
				Help:      "Processed batches by status",
			},
			[]string{"status"},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Analysis runs by status",
			},
			[]string{"status"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Analysis run duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1h
			},
		),
	}
}

func (r *Recorder) RecordGeneration(model, outcome string, duration time.Duration) {
	r.generations.WithLabelValues(model, outcome).Inc()
	r.generationLatency.WithLabelValues(model).Observe(duration.Seconds())
}

func (r *Recorder) RecordBackoff(model string, delay time.Duration) {
	r.backoffs.WithLabelValues(model).Inc()
	r.backoffSeconds.WithLabelValues(model).Add(delay.Seconds())
}

func (r *Recorder) RecordDecodeFailure() {
	r.decodeFailures.Inc()
}

func (r *Recorder) RecordCategorized(category core.Category, count int) {
	r.categorized.WithLabelValues(category.String()).Add(float64(count))
}

func (r *Recorder) RecordBatch(status string) {
	r.batches.WithLabelValues(status).Inc()
}

func (r *Recorder) RecordRun(status string, duration time.Duration) {
	r.runs.WithLabelValues(status).Inc()
	r.runDuration.Observe(duration.Seconds())
}

var _ core.Metrics = (*Recorder)(nil)
