// Package observability exposes InferSim's running state over HTTP: a
// chi router serving Prometheus metrics and a liveness probe, grounded
// in NikeGunn-tutu's internal/infra/observability and internal/api
// packages (promauto metric registration, chi.Router + promhttp.Handler
// wiring).
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PendingDepth is the current size of the scheduler's pending set.
var PendingDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "infersim",
	Subsystem: "scheduler",
	Name:      "pending_depth",
	Help:      "Current number of jobs in the scheduler's pending set.",
})

// BusyWorkers is the current count of workers executing a batch.
var BusyWorkers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "infersim",
	Subsystem: "workers",
	Name:      "busy",
	Help:      "Current number of workers executing a batch.",
})

// JobsAdmitted counts every job a generator has materialized.
var JobsAdmitted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "infersim",
	Subsystem: "jobs",
	Name:      "admitted_total",
	Help:      "Total jobs admitted by incoming generators.",
})

// JobsFinished counts every job a worker has completed.
var JobsFinished = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "infersim",
	Subsystem: "jobs",
	Name:      "finished_total",
	Help:      "Total jobs that reached JobFinished.",
})

// JobsDropped counts dropped jobs, partitioned by the scheduler's
// reported reason.
var JobsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "infersim",
	Subsystem: "jobs",
	Name:      "dropped_total",
	Help:      "Total jobs dropped, by reason.",
}, []string{"reason"})

// Poll updates the gauges from a simulator's live counts. The CLI calls
// this once, after Run returns.
func Poll(pendingDepth, busyWorkers int) {
	PendingDepth.Set(float64(pendingDepth))
	BusyWorkers.Set(float64(busyWorkers))
}
