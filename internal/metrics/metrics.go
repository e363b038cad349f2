// Package metrics records pipeline counters and durations in a private
// Prometheus registry. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lexrag"

// File outcomes used as the "outcome" label.
const (
	OutcomeScanned = "scanned"
	OutcomeSkipped = "skipped"
	OutcomeParsed  = "parsed"
	OutcomeFailed  = "failed"
)

// Batch outcomes used as the "outcome" label.
const (
	BatchUpserted = "upserted"
	BatchFailed   = "failed"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	files     *prometheus.CounterVec
	batches   *prometheus.CounterVec
	chunks    prometheus.Counter
	consumed  prometheus.Counter
	questions prometheus.Counter

	parseDuration  prometheus.Histogram
	embedDuration  prometheus.Histogram
	answerDuration prometheus.Histogram
	runDuration    *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	buckets := []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "files_total",
			Help: "Source files seen by ingestion, by outcome.",
		}, []string{"outcome"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "index_batches_total",
			Help: "Embedding batches processed by the index builder, by outcome.",
		}, []string{"outcome"}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "chunks_embedded_total",
			Help: "Chunks embedded and written to the vector store.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "artifacts_consumed_total",
			Help: "Staged artifacts removed after a committed batch.",
		}),
		questions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "questions_answered_total",
			Help: "Questions answered by the completion model.",
		}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "parse_seconds",
			Help: "Time to convert and clean one file.", Buckets: buckets,
		}),
		embedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "embed_seconds",
			Help: "Time to embed one batch.", Buckets: buckets,
		}),
		answerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "answer_seconds",
			Help: "Time to retrieve context and generate one answer.", Buckets: buckets,
		}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "run_seconds",
			Help: "Duration of a whole stage run.", Buckets: buckets,
		}, []string{"stage"}),
	}

	m.registry.MustRegister(
		m.files, m.batches, m.chunks, m.consumed, m.questions,
		m.parseDuration, m.embedDuration, m.answerDuration, m.runDuration,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// File counts one file with the given outcome.
func (m *Metrics) File(outcome string) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(outcome).Inc()
}

// Parse records one conversion.
func (m *Metrics) Parse(d time.Duration) {
	if m == nil {
		return
	}
	m.parseDuration.Observe(d.Seconds())
}

// Batch records one index batch.
func (m *Metrics) Batch(outcome string, chunks int, d time.Duration) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(outcome).Inc()
	m.embedDuration.Observe(d.Seconds())
	if outcome == BatchUpserted {
		m.chunks.Add(float64(chunks))
	}
}

// Consumed counts removed artifacts.
func (m *Metrics) Consumed(n int) {
	if m == nil {
		return
	}
	m.consumed.Add(float64(n))
}

// Answer records one answered question.
func (m *Metrics) Answer(d time.Duration) {
	if m == nil {
		return
	}
	m.questions.Inc()
	m.answerDuration.Observe(d.Seconds())
}

// Run records the duration of a stage such as "ingest" or "index".
func (m *Metrics) Run(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTextfile writes all metrics in the text exposition format for the
// node exporter textfile collector. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
