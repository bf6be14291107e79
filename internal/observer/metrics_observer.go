package observer

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver turns analysis events into Prometheus metrics
type MetricsObserver struct {
	started    *prometheus.CounterVec
	completed  *prometheus.CounterVec
	failed     *prometheus.CounterVec
	embedFails prometheus.Counter
	duration   *prometheus.HistogramVec
}

// NewMetricsObserver creates the collectors and registers them on reg
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_analysis_started_total",
			Help: "Analyses started, by input kind.",
		}, []string{"input_kind"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_analysis_completed_total",
			Help: "Analyses completed successfully, by input kind.",
		}, []string{"input_kind"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_analysis_failed_total",
			Help: "Failed analyses, by input kind and error type.",
		}, []string{"input_kind", "error_type"}),
		embedFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ai_embedding_failures_total",
			Help: "Best-effort embedding calls that failed.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ai_analysis_duration_seconds",
			Help:    "End-to-end analysis duration.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"input_kind", "outcome"}),
	}

	for _, c := range []prometheus.Collector{o.started, o.completed, o.failed, o.embedFails, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OnEvent handles analysis events by updating metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	switch event.EventType {
	case AnalysisStarted:
		o.started.WithLabelValues(event.InputKind).Inc()
	case AnalysisCompleted:
		o.completed.WithLabelValues(event.InputKind).Inc()
		o.duration.WithLabelValues(event.InputKind, "success").Observe(event.ProcessingTime.Seconds())
	case AnalysisFailed:
		o.failed.WithLabelValues(event.InputKind, event.ErrorType).Inc()
		o.duration.WithLabelValues(event.InputKind, "failure").Observe(event.ProcessingTime.Seconds())
	case EmbeddingFailed:
		o.embedFails.Inc()
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}
