package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cryptoengine/engine"
)

// Package-level collectors, registered in init(): plain package vars
// plus a MustRegister call, no custom registry.
var (
	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cryptoengine_queue_depth",
		Help: "Current resident message count in the ingest ring.",
	})

	queueDropped = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cryptoengine_queue_dropped_total",
		Help: "Cumulative messages dropped by the ingest ring due to overflow.",
	})

	parseFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cryptoengine_parse_failures_total",
		Help: "Total inbound frames discarded for failing to parse.",
	})

	schedulerDriftNs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cryptoengine_scheduler_drift_ns",
		Help: "Most recent scheduler tick drift in nanoseconds.",
	})

	schedulerMissed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cryptoengine_scheduler_missed_total",
		Help: "Total scheduler ticks whose target wakeup had already passed when the scheduler went to sleep.",
	})

	workerDurationNs = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cryptoengine_worker_duration_ns",
		Help: "Most recent duration of a named worker stage, in nanoseconds.",
	}, []string{"worker"})
)

func init() {
	prometheus.MustRegister(queueDepth, queueDropped, parseFailures)
	prometheus.MustRegister(schedulerDriftNs, schedulerMissed)
	prometheus.MustRegister(workerDurationNs)
}

// Registry implements engine.Observer by updating the package-level
// Prometheus collectors. It carries no state of its own; every method
// is safe for concurrent use since the underlying collectors are.
type Registry struct{}

// NewRegistry returns an engine.Observer backed by Prometheus.
func NewRegistry() *Registry { return &Registry{} }

func (Registry) QueueDepth(depth int) {
	queueDepth.Set(float64(depth))
}

func (Registry) QueueDropped(total int64) {
	queueDropped.Set(float64(total))
}

func (Registry) ParseFailure() {
	parseFailures.Inc()
}

func (Registry) SchedulerTick(rec engine.SchedulerRecord, missedSchedule bool) {
	schedulerDriftNs.Set(float64(rec.DriftNs))
	if missedSchedule {
		schedulerMissed.Inc()
	}
}

func (Registry) WorkerDuration(worker string, durationNs int64) {
	workerDurationNs.WithLabelValues(worker).Set(float64(durationNs))
}

// Handler returns the Prometheus text-exposition HTTP handler, to be
// mounted at /metrics by the composition root.
func Handler() http.Handler {
	return promhttp.Handler()
}
