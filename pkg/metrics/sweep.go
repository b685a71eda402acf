package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics records outcomes of the project health sweep.
type SweepMetrics struct {
	duration  prometheus.Histogram
	evaluated prometheus.Counter
	notified  *prometheus.CounterVec
	supprsd   *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// NewSweepMetrics registers the sweep metrics on the provided registerer.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sweep_duration_seconds",
		Help:    "Duration of monitoring sweeps in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	evaluated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_projects_evaluated_total",
		Help: "Projects evaluated across all sweeps.",
	})
	notified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_notifications_total",
		Help: "Notifications emitted by sweep evaluators.",
	}, []string{"category"})
	suppressed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_suppressed_total",
		Help: "Notifications suppressed by the dedup window.",
	}, []string{"category"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_evaluator_failures_total",
		Help: "Evaluator errors isolated during sweeps.",
	}, []string{"category"})
	reg.MustRegister(duration, evaluated, notified, suppressed, failures)
	return &SweepMetrics{
		duration:  duration,
		evaluated: evaluated,
		notified:  notified,
		supprsd:   suppressed,
		failures:  failures,
	}
}

// ObserveDuration records how long a full sweep took.
func (s *SweepMetrics) ObserveDuration(duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.Observe(duration.Seconds())
}

// AddEvaluated counts projects evaluated in a sweep.
func (s *SweepMetrics) AddEvaluated(n int) {
	if s == nil || s.evaluated == nil {
		return
	}
	s.evaluated.Add(float64(n))
}

// IncNotified counts an emitted notification for the category.
func (s *SweepMetrics) IncNotified(category string) {
	if s == nil || s.notified == nil {
		return
	}
	s.notified.WithLabelValues(normalizeLabel(category)).Inc()
}

// IncSuppressed counts a dedup-suppressed notification for the category.
func (s *SweepMetrics) IncSuppressed(category string) {
	if s == nil || s.supprsd == nil {
		return
	}
	s.supprsd.WithLabelValues(normalizeLabel(category)).Inc()
}

// IncFailure counts an isolated evaluator failure for the category.
func (s *SweepMetrics) IncFailure(category string) {
	if s == nil || s.failures == nil {
		return
	}
	s.failures.WithLabelValues(normalizeLabel(category)).Inc()
}
