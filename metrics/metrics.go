// Package metrics instruments the cycle solver with Prometheus metrics,
// grounded on the prometheus.NewTimer/ObserveDuration pattern used by
// differ.StateDiffer.Diff in the teacher repository.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder holds the metrics a Cycle reports against. Construct one per
// process (or per registry) and share it across every Cycle via
// arbitrage.WithMetrics.
type Recorder struct {
	solveDuration   prometheus.Histogram
	preCheckResults *prometheus.CounterVec
}

// NewRecorder registers the solver's metrics against reg and returns a
// Recorder. reg must not be nil.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		solveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arbcycle",
			Subsystem: "solver",
			Name:      "cycle_solve_duration_seconds",
			Help:      "Time spent evaluating a single cycle's Calculate call.",
			Buckets:   prometheus.DefBuckets,
		}),
		preCheckResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbcycle",
			Subsystem: "solver",
			Name:      "pre_check_total",
			Help:      "Outcome of the spot-price pre-check, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(r.solveDuration, r.preCheckResults)
	return r
}

// StartSolve begins timing a Calculate call; the returned func records the
// duration when called, typically via defer.
func (r *Recorder) StartSolve() func() {
	timer := prometheus.NewTimer(r.solveDuration)
	return func() { timer.ObserveDuration() }
}

// ObservePreCheck records the pre-check outcome: nil means the cycle passed
// and optimization proceeded; a non-nil error is labeled by its message.
func (r *Recorder) ObservePreCheck(err error) {
	label := "ok"
	if err != nil {
		label = err.Error()
	}
	r.preCheckResults.WithLabelValues(label).Inc()
}
