package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks sweep results
type Metrics struct {
	runs        *prometheus.CounterVec
	locks       *prometheus.CounterVec
	released    prometheus.Counter
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

// NewMetrics registers the sweep metrics on reg. A nil registerer keeps them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "editlock_sweeps_total",
			Help: "Sweep runs by outcome",
		}, []string{"outcome"}),
		locks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "editlock_locks_inspected_total",
			Help: "Inspected edit locks by state",
		}, []string{"state"}),
		released: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "editlock_locks_released_total",
			Help: "Expired edit locks removed from the store",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "editlock_sweep_duration_seconds",
			Help:    "Wall time of a sweep run",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "editlock_sweep_last_success_timestamp_seconds",
			Help: "Unix time of the last successful sweep",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.runs, m.locks, m.released, m.duration, m.lastSuccess)
	}

	return m
}

// recordLock records one inspected lock
func (m *Metrics) recordLock(state string) {
	m.locks.WithLabelValues(state).Inc()
}

// recordRelease records a removed lock
func (m *Metrics) recordRelease() {
	m.released.Inc()
}

// recordRun records the outcome of a finished run
func (m *Metrics) recordRun(started, finished time.Time, err error) {
	m.duration.Observe(finished.Sub(started).Seconds())
	if err != nil {
		m.runs.WithLabelValues("failed").Inc()
		return
	}
	m.runs.WithLabelValues("succeeded").Inc()
	m.lastSuccess.Set(float64(finished.Unix()))
}
