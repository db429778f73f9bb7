package sim

import "math/rand"

// JobState is a job's lifecycle tag, attached by the kernel, not the job
// itself (spec.md §3).
type JobState int

const (
	Pending JobState = iota
	Running
	Done
	Dropped
)

func (s JobState) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Running:
		return "Running"
	case Done:
		return "Done"
	case Dropped:
		return "Dropped"
	default:
		return "Unknown"
	}
}

// Job is immutable after creation except for the kernel-owned lifecycle
// fields (State, StartedAt, FinishedAt). Field semantics and invariants
// are exactly spec.md §3:
//   - LengthSample >= 0, P99 >= 0, Deadline >= AdmittedAt
//   - once State == Running, StartedAt is set and never revised
//   - once State == Done, FinishedAt >= StartedAt + LengthSample
type Job struct {
	ID           uint64
	AdmittedAt   float64
	Deadline     float64
	Budget       float64
	LengthSample float64
	P99          float64

	State      JobState
	StartedAt  float64
	FinishedAt float64
}

// NewJob materializes a fresh job for an arrival at admittedAt, sampling
// its length from spec and computing its deadline from budget (spec.md
// §4.3).
func NewJob(id uint64, admittedAt float64, spec LengthSpec, budget float64, rng *rand.Rand) *Job {
	return &Job{
		ID:           id,
		AdmittedAt:   admittedAt,
		Deadline:     admittedAt + budget,
		Budget:       budget,
		LengthSample: spec.Sample(rng),
		P99:          spec.P99(),
		State:        Pending,
	}
}
