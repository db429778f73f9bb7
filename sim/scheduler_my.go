package sim

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// defaultPushStep and defaultPushMaxIterations are the tunables spec.md
// §9 calls out as open ("maybe 0.1 in time? or whatever resolution"):
// step defaults to 0.1, and the τ search is bounded so a pathological
// config can't spin forever.
const (
	defaultPushStep          = 0.1
	defaultPushMaxIterations = 10000
)

// MyScheduler is the deadline-aware "spring push" policy (spec.md
// §4.5.3): each pending job is a spring pushed as late as its feasible
// interval [admitted_at, deadline-p99] allows, constrained by the
// tightest-deadline job ahead of it in the walk.
//
// State machine: Idle -> Planning -> Armed(timer) -> Planning -> ...
// Any arrival or worker-idle stimulus cancels an armed timer and
// re-enters Planning; Planning itself (the τ search) is pure, with all
// side effects (dispatch, timer arm) confined to the emit step at the
// end of replan.
//
// Reference percentile is 0.99 (spec.md §4.5.3). LengthSpec only exposes
// a p99 quantile (spec.md §3), so Percentile values other than 0.99 are
// accepted but planned against the job's analytic P99 field regardless,
// with a one-time warning.
type MyScheduler struct {
	Percentile    float64
	Step          float64
	MaxIterations int

	pending          []*Job
	armed            *armedTimer
	nextToken        uint64
	warnedPercentile bool
}

type armedTimer struct {
	token  uint64
	handle Handle
}

// NewMyScheduler returns a My scheduler. percentile <= 0 defaults to
// 0.99; step <= 0 defaults to 0.1.
func NewMyScheduler(percentile, step float64) *MyScheduler {
	if percentile <= 0 {
		percentile = 0.99
	}
	if step <= 0 {
		step = defaultPushStep
	}
	return &MyScheduler{Percentile: percentile, Step: step, MaxIterations: defaultPushMaxIterations}
}

func (s *MyScheduler) PendingCount() int { return len(s.pending) }

func (s *MyScheduler) OnArrival(ctx *SchedulerContext, job *Job) error {
	s.warnPercentileOnce()
	s.pending = append(s.pending, job)
	s.cancelArmed(ctx)
	return s.replan(ctx)
}

func (s *MyScheduler) OnWorkerIdle(ctx *SchedulerContext, _ int) error {
	s.cancelArmed(ctx)
	return s.replan(ctx)
}

func (s *MyScheduler) OnTimer(ctx *SchedulerContext, token uint64) error {
	if s.armed == nil || s.armed.token != token {
		return nil // stale timer, fired after cancellation: no-op
	}
	s.armed = nil
	return s.replan(ctx)
}

func (s *MyScheduler) warnPercentileOnce() {
	if s.Percentile != 0.99 && !s.warnedPercentile {
		logrus.Warnf("My scheduler: percentile %.4f requested but only the analytic p99 quantile is available; planning against p99", s.Percentile)
		s.warnedPercentile = true
	}
}

func (s *MyScheduler) cancelArmed(ctx *SchedulerContext) {
	if s.armed != nil {
		ctx.Queue.Cancel(s.armed.handle)
		s.armed = nil
	}
}

// replan is one Planning pass: sort, search for the latest feasible
// push-point, then emit the ready prefix and arm a timer for what's left.
func (s *MyScheduler) replan(ctx *SchedulerContext) error {
	if len(s.pending) == 0 {
		return nil
	}
	batchSize := s.targetBatchSize(ctx.Workers)
	if batchSize <= 0 {
		return nil // no workers configured at all (spec.md §8 S6): stay pending
	}

	sortPendingByFeasibleEnd(s.pending)
	now := ctx.Queue.Now()
	chunks := chunkJobs(s.pending, batchSize)
	starts := s.search(chunks, now, ctx.Workers)

	idle := ctx.IdleWorkers()
	readyCount := 0
	for readyCount < len(chunks) && starts[readyCount] <= now {
		readyCount++
	}

	dispatched := 0
	for dispatched < readyCount && dispatched < len(idle) {
		batch := chunks[dispatched]
		for _, j := range batch {
			if isInfeasibleAtAdmission(j) {
				logrus.Warnf("job %d dispatched as LateStart: infeasible interval at admission", j.ID)
			} else if starts[dispatched] > j.Deadline-j.P99 {
				logrus.Warnf("job %d dispatched as LateStart: start %.3f exceeds feasible end %.3f", j.ID, starts[dispatched], j.Deadline-j.P99)
			}
		}
		w := idle[dispatched]
		if err := w.Dispatch(ctx.Queue, ctx.Sink, batch); err != nil {
			return err
		}
		s.removeFromPending(batch)
		dispatched++
	}

	if dispatched == readyCount && dispatched < len(chunks) {
		nextStart := starts[dispatched]
		token := s.nextToken
		s.nextToken++
		h, err := ctx.Queue.Push(Timer{Token: token}, nextStart)
		if err != nil {
			return err
		}
		s.armed = &armedTimer{token: token, handle: h}
	}
	return nil
}

// search performs steps 2-4 of the push algorithm: starting at τ=now
// (the ASAP plan, kept as the fallback even when a job that has waited
// is already past its feasible end, since later starts only make that
// worse), advance τ by Step and recompute starts, keeping the latest plan
// that still satisfies every non-exempt job's feasible interval, bounded
// by MaxIterations.
func (s *MyScheduler) search(chunks [][]*Job, now float64, workers []*Worker) []float64 {
	tau := now
	baseline := computeStarts(chunks, tau, now, workers)
	best := baseline
	for iter := 0; iter < s.MaxIterations; iter++ {
		tau += s.Step
		candidate := computeStarts(chunks, tau, now, workers)
		if !feasible(chunks, candidate, baseline) {
			break
		}
		best = candidate
	}
	return best
}

// computeStarts assigns each batch a tentative start: the push-point τ,
// the completion of the previous batch in the walk (Δ_i, spec.md
// §4.5.3), or the earliest a worker is free, whichever is latest.
func computeStarts(chunks [][]*Job, tau, now float64, workers []*Worker) []float64 {
	starts := make([]float64, len(chunks))
	straggler := 0.0
	earliestFree := earliestWorkerFree(workers, now)
	for k, batch := range chunks {
		floor := tau
		if k == 0 {
			floor = math.Max(floor, earliestFree)
		} else {
			floor = math.Max(floor, starts[k-1]+straggler)
		}
		starts[k] = floor
		straggler = stragglerOf(batch)
	}
	return starts
}

// feasible reports whether candidate starts are acceptable relative to
// baseline (the τ=now plan). A chunk holding a job already infeasible at
// admission is pinned to its baseline start — spec.md §4.5.3 says such a
// job is "dispatched in the next available batch regardless", so pushing
// its batch later buys nothing and is rejected outright. Every other
// chunk must keep each job's start within its feasible interval.
func feasible(chunks [][]*Job, starts, baseline []float64) bool {
	for k, batch := range chunks {
		hasInfeasible := false
		for _, j := range batch {
			if isInfeasibleAtAdmission(j) {
				hasInfeasible = true
				break
			}
		}
		if hasInfeasible {
			if starts[k] > baseline[k] {
				return false
			}
			continue
		}
		for _, j := range batch {
			if starts[k] > j.Deadline-j.P99 {
				return false
			}
		}
	}
	return true
}

func isInfeasibleAtAdmission(j *Job) bool {
	return j.Deadline-j.P99 < j.AdmittedAt
}

func earliestWorkerFree(workers []*Worker, now float64) float64 {
	if len(workers) == 0 {
		return now
	}
	best := math.Inf(1)
	for _, w := range workers {
		free := now
		if !w.IsIdle() {
			free = w.Until()
		}
		if free < best {
			best = free
		}
	}
	return best
}

func stragglerOf(batch []*Job) float64 {
	m := 0.0
	for _, j := range batch {
		if j.LengthSample > m {
			m = j.LengthSample
		}
	}
	return m
}

// targetBatchSize is the smallest BatchSize across the fleet: planning
// against the minimum guarantees any planned batch legally fits whatever
// worker ends up idle to receive it, even with a heterogeneous fleet.
func (s *MyScheduler) targetBatchSize(workers []*Worker) int {
	min := 0
	for _, w := range workers {
		if min == 0 || w.BatchSize < min {
			min = w.BatchSize
		}
	}
	return min
}

// chunkJobs splits pending into consecutive groups of size, the final
// group possibly shorter. A shorter trailing group is still dispatched
// once ready — requiring every batch to be exactly full would starve the
// tail of a finite workload and violate job conservation (spec.md §8
// property 4); see DESIGN.md.
func chunkJobs(pending []*Job, size int) [][]*Job {
	var chunks [][]*Job
	for i := 0; i < len(pending); i += size {
		end := i + size
		if end > len(pending) {
			end = len(pending)
		}
		chunks = append(chunks, pending[i:end])
	}
	return chunks
}

func (s *MyScheduler) removeFromPending(batch []*Job) {
	remove := make(map[*Job]bool, len(batch))
	for _, j := range batch {
		remove[j] = true
	}
	out := s.pending[:0:0]
	for _, j := range s.pending {
		if !remove[j] {
			out = append(out, j)
		}
	}
	s.pending = out
}

// sortPendingByFeasibleEnd orders by deadline-p99 ascending (earliest
// feasible end first), tie-broken by admitted_at then id (spec.md
// §4.5.3 step 1).
func sortPendingByFeasibleEnd(pending []*Job) {
	sort.SliceStable(pending, func(i, j int) bool {
		ei, ej := pending[i].Deadline-pending[i].P99, pending[j].Deadline-pending[j].P99
		if ei != ej {
			return ei < ej
		}
		if pending[i].AdmittedAt != pending[j].AdmittedAt {
			return pending[i].AdmittedAt < pending[j].AdmittedAt
		}
		return pending[i].ID < pending[j].ID
	})
}
