package reassign

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sweepDuration   prometheus.Histogram
	missionsChecked *prometheus.CounterVec
	sweepsRejected  prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Histogram, *prometheus.CounterVec, prometheus.Counter) {
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reassignment_sweep_duration_seconds",
			Help:    "Duration of urgent reassignment sweeps",
			Buckets: prometheus.DefBuckets,
		},
	)
	checked := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reassignment_missions_total",
			Help: "Number of missions processed by outcome",
		},
		[]string{"outcome"},
	)
	rejected := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reassignment_sweeps_rejected_total",
			Help: "Number of sweep requests rejected because one was in flight",
		},
	)
	return dur, checked, rejected
}

func init() {
	sweepDuration, missionsChecked, sweepsRejected = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers reassignment metrics on the provided
// registry. If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(sweepDuration, missionsChecked, sweepsRejected)
}

// ResetMetrics reinitializes metric collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	sweepDuration, missionsChecked, sweepsRejected = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
