package sim

import (
	"math/rand"

	"github.com/infersim/infersim/observability"
	"github.com/infersim/infersim/trace"
)

// SchedulerContext is the borrowed handle a Scheduler uses to act: push
// and cancel events, inspect workers, dispatch batches, emit drop traces,
// and draw from its own seeded RNG. Handing this in per call (rather than
// giving the scheduler a standing reference to the simulator) keeps the
// contract narrow and matches spec.md §9's "expose push via a borrowed
// handle passed to handlers, not global state".
type SchedulerContext struct {
	Queue   *EventQueue
	Workers []*Worker
	Sink    trace.EventSink
	RNG     *rand.Rand

	// Dropped is bumped by Drop so Simulator can keep a running count
	// without polling the sink for a record kind it may not retain.
	Dropped *int
}

// IdleWorkers returns the subset of ctx.Workers currently idle, in
// worker-ID order.
func (ctx *SchedulerContext) IdleWorkers() []*Worker {
	out := make([]*Worker, 0, len(ctx.Workers))
	for _, w := range ctx.Workers {
		if w.IsIdle() {
			out = append(out, w)
		}
	}
	return out
}

// Drop emits a JobDroppedRecord and marks the job Dropped. Policy-driven,
// always traced with a reason (spec.md §4.5, "Failure semantics").
func (ctx *SchedulerContext) Drop(job *Job, reason string) {
	job.State = Dropped
	ctx.Sink.Emit(trace.JobDroppedRecord{ID: job.ID, At: ctx.Queue.Now(), Reason: reason})
	if ctx.Dropped != nil {
		*ctx.Dropped++
	}
	observability.JobsDropped.WithLabelValues(reason).Inc()
}

// Scheduler is the C5 contract: pluggable dispatch policy over a closed
// set of reference variants (spec.md §4.5, §9). It may dispatch batches,
// drop jobs, and arm/cancel timers on any stimulus; it must be idempotent
// against a spurious OnWorkerIdle when no jobs are pending.
type Scheduler interface {
	OnArrival(ctx *SchedulerContext, job *Job) error
	OnWorkerIdle(ctx *SchedulerContext, workerID int) error
	OnTimer(ctx *SchedulerContext, token uint64) error
	// PendingCount reports how many jobs the policy currently holds
	// un-dispatched, for the observability gauge (spec.md §3).
	PendingCount() int
}

// FIFOScheduler dispatches the oldest pending jobs first, never drops,
// never arms a timer (spec.md §4.5.1).
type FIFOScheduler struct {
	pending []*Job
}

// NewFIFOScheduler returns an empty FIFO scheduler.
func NewFIFOScheduler() *FIFOScheduler { return &FIFOScheduler{} }

func (s *FIFOScheduler) PendingCount() int { return len(s.pending) }

func (s *FIFOScheduler) OnArrival(ctx *SchedulerContext, job *Job) error {
	s.pending = append(s.pending, job)
	return s.tryDispatch(ctx)
}

func (s *FIFOScheduler) OnWorkerIdle(ctx *SchedulerContext, _ int) error {
	return s.tryDispatch(ctx)
}

func (s *FIFOScheduler) OnTimer(_ *SchedulerContext, _ uint64) error { return nil }

func (s *FIFOScheduler) tryDispatch(ctx *SchedulerContext) error {
	for _, w := range ctx.Workers {
		if !w.IsIdle() || len(s.pending) == 0 {
			continue
		}
		n := w.BatchSize
		if n > len(s.pending) {
			n = len(s.pending)
		}
		batch := s.pending[:n]
		s.pending = s.pending[n:]
		if err := w.Dispatch(ctx.Queue, ctx.Sink, batch); err != nil {
			return err
		}
	}
	return nil
}

// RandomScheduler is FIFOScheduler with the dispatched batch drawn as a
// uniform random subset of the pending set, without replacement within
// one dispatch, from the scheduler's seeded RNG (spec.md §4.5.2).
type RandomScheduler struct {
	pending []*Job
}

// NewRandomScheduler returns an empty Random scheduler.
func NewRandomScheduler() *RandomScheduler { return &RandomScheduler{} }

func (s *RandomScheduler) PendingCount() int { return len(s.pending) }

func (s *RandomScheduler) OnArrival(ctx *SchedulerContext, job *Job) error {
	s.pending = append(s.pending, job)
	return s.tryDispatch(ctx)
}

func (s *RandomScheduler) OnWorkerIdle(ctx *SchedulerContext, _ int) error {
	return s.tryDispatch(ctx)
}

func (s *RandomScheduler) OnTimer(_ *SchedulerContext, _ uint64) error { return nil }

func (s *RandomScheduler) tryDispatch(ctx *SchedulerContext) error {
	for _, w := range ctx.Workers {
		if !w.IsIdle() || len(s.pending) == 0 {
			continue
		}
		n := w.BatchSize
		if n > len(s.pending) {
			n = len(s.pending)
		}
		chosen := ctx.RNG.Perm(len(s.pending))[:n]

		batch := make([]*Job, n)
		remove := make(map[int]bool, n)
		for i, idx := range chosen {
			batch[i] = s.pending[idx]
			remove[idx] = true
		}
		remaining := s.pending[:0:0]
		for i, j := range s.pending {
			if !remove[i] {
				remaining = append(remaining, j)
			}
		}
		s.pending = remaining

		if err := w.Dispatch(ctx.Queue, ctx.Sink, batch); err != nil {
			return err
		}
	}
	return nil
}
