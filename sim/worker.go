package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/infersim/infersim/trace"
)

// WorkerState tags a Worker's occupancy.
type WorkerState int

const (
	WorkerIdle WorkerState = iota
	WorkerBusy
)

// Worker is the C4 batch executor: fixed batch_size, pad-to-longest
// execution (spec.md §4.4). A worker owns no jobs while idle and
// exclusively owns the batch it is running while busy.
type Worker struct {
	ID        int
	BatchSize int

	state      WorkerState
	until      float64
	batch      []*Job
	doneHandle Handle
}

// NewWorker returns an idle worker with the given fixed batch size.
func NewWorker(id, batchSize int) *Worker {
	return &Worker{ID: id, BatchSize: batchSize, state: WorkerIdle}
}

// IsIdle reports whether the worker can accept a new batch.
func (w *Worker) IsIdle() bool { return w.state == WorkerIdle }

// Dispatch assigns batch to the worker. Precondition: IsIdle() and
// 1 <= len(batch) <= w.BatchSize; violating either is a LogicError
// (spec.md §4.4, §4.5 "Failure semantics"). Execution time is the
// straggler length — the max LengthSample across the batch — modeling
// pad-to-longest GPU batching. Emits a BatchStart trace record and
// schedules the worker's own BatchDone event.
func (w *Worker) Dispatch(q *EventQueue, sink trace.EventSink, batch []*Job) error {
	if !w.IsIdle() {
		return &LogicError{Reason: "dispatch to a busy worker"}
	}
	if len(batch) == 0 || len(batch) > w.BatchSize {
		return &LogicError{Reason: "batch size violates worker batch_size"}
	}

	now := q.Now()
	execTime := 0.0
	jobIDs := make([]uint64, len(batch))
	for i, j := range batch {
		if j.LengthSample > execTime {
			execTime = j.LengthSample
		}
		j.State = Running
		j.StartedAt = now
		jobIDs[i] = j.ID
	}

	w.state = WorkerBusy
	w.until = now + execTime
	w.batch = batch

	sink.Emit(trace.BatchStartRecord{
		WorkerID:     w.ID,
		JobIDs:       jobIDs,
		StartAt:      now,
		PredictedEnd: w.until,
	})
	h, err := q.Push(BatchStart{WorkerID: w.ID, Batch: batch}, now)
	if err != nil {
		return err
	}
	_ = h // trace-only self notification; nothing cancels it

	doneHandle, err := q.Push(BatchDone{WorkerID: w.ID, Batch: batch}, w.until)
	if err != nil {
		return err
	}
	w.doneHandle = doneHandle

	logrus.Debugf("[t=%.3f] worker %d dispatched batch of %d, straggler=%.3f until=%.3f",
		now, w.ID, len(batch), execTime, w.until)
	return nil
}

// Complete finalizes the worker's currently running batch: marks every
// job Done, emits a JobFinished trace per job (late-tagged when
// finished_at > deadline, per spec.md §4.4 — late jobs are traced, not
// dropped), and returns the worker to Idle.
func (w *Worker) Complete(now float64, sink trace.EventSink) []*Job {
	batch := w.batch
	for _, j := range batch {
		j.State = Done
		j.FinishedAt = now
		late := j.FinishedAt > j.Deadline
		sink.Emit(trace.JobFinishedRecord{
			ID:         j.ID,
			StartedAt:  j.StartedAt,
			FinishedAt: j.FinishedAt,
			Late:       late,
		})
		if late {
			logrus.Warnf("job %d finished late: finished_at=%.3f deadline=%.3f", j.ID, j.FinishedAt, j.Deadline)
		}
	}
	w.state = WorkerIdle
	w.batch = nil
	w.until = 0
	return batch
}

// Until returns the simulated time the worker's current batch will
// complete; meaningless while IsIdle().
func (w *Worker) Until() float64 { return w.until }
