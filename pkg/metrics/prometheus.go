package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "optionpilot"

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	universe     *prometheus.HistogramVec
	filtered     *prometheus.HistogramVec
	fallbacks    *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	confidence   *prometheus.HistogramVec
	messagesSent *prometheus.CounterVec
}

// New registers the recorder's collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	sizeBuckets := []float64{0, 1, 2, 5, 10, 20, 50, 100, 250}
	return &Recorder{
		universe: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "screening_universe_size",
			Help:      "Normalized contracts entering the risk filter",
			Buckets:   sizeBuckets,
		}, []string{"risk_profile"}),
		filtered: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "screening_filtered_size",
			Help:      "Contracts passing the risk filter",
			Buckets:   sizeBuckets,
		}, []string{"risk_profile"}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Times a local fallback replaced a collaborator",
		}, []string{"source"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors encountered",
		}, []string{"type"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of operations in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		confidence: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_confidence",
			Help:      "Clamped confidence of issued recommendations",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 10),
		}, []string{"strategy"}),
		messagesSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Total number of messages sent to a topic",
		}, []string{"topic", "symbol"}),
	}
}

func (r *Recorder) RecordScreening(profile string, universe, filtered int) {
	r.universe.WithLabelValues(profile).Observe(float64(universe))
	r.filtered.WithLabelValues(profile).Observe(float64(filtered))
}

func (r *Recorder) RecordFallback(source string) {
	r.fallbacks.WithLabelValues(source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordConfidence(strategy string, confidence float64) {
	r.confidence.WithLabelValues(strategy).Observe(confidence)
}

// RecordMessageSent records a message sent to a topic.
func (r *Recorder) RecordMessageSent(topic, symbol string) {
	r.messagesSent.WithLabelValues(topic, symbol).Inc()
}

// Nop discards everything; used where metrics are optional.
type Nop struct{}

func (Nop) RecordScreening(string, int, int) {}

func (Nop) RecordFallback(string) {}

func (Nop) RecordError(string) {}

func (Nop) RecordLatency(string, float64) {}

func (Nop) RecordConfidence(string, float64) {}

func (Nop) RecordMessageSent(string, string) {}
