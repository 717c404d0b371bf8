package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics tracks background loops such as outbox batches and event consumers.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewJobMetrics registers job metrics on reg. A nil registerer yields a no-op recorder.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	m := &JobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of background job runs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Background job runs by outcome.",
		}, []string{"job", "outcome"}),
	}
	reg.MustRegister(m.duration, m.outcomes)
	return m
}

// Observe records one run of job.
func (m *JobMetrics) Observe(job string, started time.Time, err error) {
	if m == nil || m.duration == nil {
		return
	}
	job = normalizeLabel(job)
	m.duration.WithLabelValues(job).Observe(time.Since(started).Seconds())
	m.outcomes.WithLabelValues(job, outcome(err)).Inc()
}

// Count records count items handled by job under the given outcome without timing.
func (m *JobMetrics) Count(job, result string, count int) {
	if m == nil || m.outcomes == nil || count <= 0 {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(job), normalizeLabel(result)).Add(float64(count))
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
