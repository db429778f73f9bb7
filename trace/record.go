// Package trace defines the event-sink contract InferSim's kernel writes
// decision and lifecycle records through, and the concrete sink
// implementations the CLI wires up. It has no dependency on package sim:
// records are pure data, so a sink can be built and unit tested in
// isolation (spec.md §9, "the sink is the only point of impurity").
package trace

// Record is the sealed set of trace record kinds (spec.md §6).
type Record interface {
	// Kind is the record's CSV/JSON/parquet file stem.
	Kind() string
}

// JobAdmittedRecord is emitted when a job is materialized by a generator.
type JobAdmittedRecord struct {
	ID           uint64
	AdmittedAt   float64
	Deadline     float64
	LengthSample float64
	P99          float64
}

func (JobAdmittedRecord) Kind() string { return "job_admitted" }

// BatchStartRecord is emitted when a worker begins executing a batch.
type BatchStartRecord struct {
	WorkerID     int
	JobIDs       []uint64
	StartAt      float64
	PredictedEnd float64
}

func (BatchStartRecord) Kind() string { return "batch_start" }

// JobFinishedRecord is emitted once per job when its batch completes.
type JobFinishedRecord struct {
	ID         uint64
	StartedAt  float64
	FinishedAt float64
	Late       bool
}

func (JobFinishedRecord) Kind() string { return "job_finished" }

// JobDroppedRecord is emitted when a scheduler policy drops a pending job.
type JobDroppedRecord struct {
	ID     uint64
	At     float64
	Reason string
}

func (JobDroppedRecord) Kind() string { return "job_dropped" }
