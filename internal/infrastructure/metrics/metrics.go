package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ressKim-io/prompt-guard/internal/domain/entity"
)

const namespace = "prompt_guard"

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	classifications   *prometheus.CounterVec
	inferenceDuration prometheus.Histogram
	inferenceErrors   prometheus.Counter
	cacheLookups      *prometheus.CounterVec
	modelPhase        *prometheus.GaugeVec
	loadDuration      prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Texts classified, by top label.",
		}, []string{"label"}),
		inferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Wall time of a single forward pass including tokenization.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		inferenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_errors_total",
			Help:      "Forward passes that returned an error.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_lookups_total",
			Help:      "Result cache lookups, by outcome.",
		}, []string{"outcome"}),
		modelPhase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_phase",
			Help:      "1 for the current model lifecycle phase, 0 otherwise.",
		}, []string{"phase"}),
		loadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_load_duration_seconds",
			Help:      "Time the model load took, set once it finishes.",
		}),
	}

	reg.MustRegister(
		m.classifications,
		m.inferenceDuration,
		m.inferenceErrors,
		m.cacheLookups,
		m.modelPhase,
		m.loadDuration,
	)
	m.SetPhase(entity.ModelPhaseLoading)

	return m
}

// ObserveClassification records a successful forward pass
func (m *Metrics) ObserveClassification(label entity.Label, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(string(label)).Inc()
	m.inferenceDuration.Observe(elapsed.Seconds())
}

// ObserveInferenceError records a failed forward pass
func (m *Metrics) ObserveInferenceError() {
	if m == nil {
		return
	}
	m.inferenceErrors.Inc()
}

// ObserveCacheLookup records a result cache hit or miss
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// SetPhase flips the model phase gauge
func (m *Metrics) SetPhase(phase entity.ModelPhase) {
	if m == nil {
		return
	}
	for _, p := range []entity.ModelPhase{entity.ModelPhaseLoading, entity.ModelPhaseReady, entity.ModelPhaseFailed} {
		v := 0.0
		if p == phase {
			v = 1
		}
		m.modelPhase.WithLabelValues(string(p)).Set(v)
	}
}

// ObserveLoad records how long the model load took
func (m *Metrics) ObserveLoad(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.loadDuration.Set(elapsed.Seconds())
}
