package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/skyops/fleetmatch/core/metrics"
)

// PromSink records matching activity in Prometheus metrics.
type PromSink struct {
	assignments *prometheus.CounterVec
	sweeps      prometheus.Counter
	sweepDur    prometheus.Histogram
}

// NewPromSink registers matching metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignments_total",
		Help: "Total number of committed assignments",
	}, []string{"reassigned"})
	sweeps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweeps_total",
		Help: "Total number of completed reassignment sweeps",
	})
	sweepDur := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sweep_duration_seconds",
		Help:    "Duration of completed reassignment sweeps",
		Buckets: prometheus.DefBuckets,
	})

	if err := reg.Register(assignments); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			assignments = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(sweeps); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			sweeps = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(sweepDur); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			sweepDur = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	return &PromSink{assignments: assignments, sweeps: sweeps, sweepDur: sweepDur}, nil
}

// RecordAssignment increments the assignment counter.
func (s *PromSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	s.assignments.WithLabelValues(strconv.FormatBool(rec.Reassigned)).Inc()
	return nil
}

// RecordSweep counts the sweep and observes its duration.
func (s *PromSink) RecordSweep(rec coremetrics.SweepRecord) error {
	s.sweeps.Inc()
	s.sweepDur.Observe(rec.Duration.Seconds())
	return nil
}

// Close is a no-op for the Prometheus sink.
func (s *PromSink) Close() error { return nil }
