package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "triage"

// Metrics holds the classification counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Batches        *prometheus.CounterVec
	Records        *prometheus.CounterVec
	Failures       *prometheus.CounterVec
	BatchDuration  prometheus.Histogram
	ClassifierCost *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_total",
				Help:      "Classification batches handled, by outcome (accepted or rejected)",
			},
			[]string{"outcome"},
		),
		Records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Records classified, by result (success or failure)",
			},
			[]string{"result"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "record_failures_total",
				Help:      "Per-record failures by pipeline stage",
			},
			[]string{"stage"},
		),
		BatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Time spent processing one batch",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		ClassifierCost: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifier_cost_usd_total",
				Help:      "Accumulated classifier spend in USD",
			},
			[]string{"provider", "model"},
		),
	}

	for _, c := range []prometheus.Collector{m.Batches, m.Records, m.Failures, m.BatchDuration, m.ClassifierCost} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// BatchRejected counts a request that was refused before any record was classified.
func (m *Metrics) BatchRejected() {
	if m == nil {
		return
	}
	m.Batches.WithLabelValues("rejected").Inc()
}

// BatchProcessed records the outcome of one accepted batch.
func (m *Metrics) BatchProcessed(succeeded, failed int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Batches.WithLabelValues("accepted").Inc()
	m.Records.WithLabelValues("success").Add(float64(succeeded))
	m.Records.WithLabelValues("failure").Add(float64(failed))
	m.BatchDuration.Observe(elapsed.Seconds())
}

// RecordFailed counts a failed record under its stage.
func (m *Metrics) RecordFailed(stage string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(stage).Inc()
}

// AddCost adds classifier spend.
func (m *Metrics) AddCost(provider, model string, usd float64) {
	if m == nil || usd <= 0 {
		return
	}
	m.ClassifierCost.WithLabelValues(provider, model).Add(usd)
}
