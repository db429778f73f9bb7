package sim

import (
	"github.com/infersim/infersim/observability"
	"github.com/infersim/infersim/trace"
)

// IncomingSpec is attached to each generator: the LengthSpec of the
// cohort it produces, and the budget used to compute each job's deadline
// (spec.md §3).
type IncomingSpec struct {
	Length LengthSpec
	Budget float64
}

// GeneratorSpec is the tagged union of declarative arrival-stream
// descriptions a run can carry (spec.md §4.3).
type GeneratorSpec interface {
	isGeneratorSpec()
}

// OneBatchSpec emits NJobs arrivals, all stamped at Delay after the run
// starts. A zero-job burst is a no-op: no Arrival is pushed (spec.md §9,
// resolving the "final-batch error" open question).
type OneBatchSpec struct {
	Delay  float64
	NJobs  int
	Spec   IncomingSpec
}

func (OneBatchSpec) isGeneratorSpec() {}

// RateSpec emits arrivals at rate Unit/Per jobs per sim-time unit. If
// Bursty, Unit arrivals land together at each multiple of Per; otherwise
// arrivals are spaced uniformly by Per/Unit. This stream never declares
// itself exhausted — it is bounded only by the run's Until predicate
// (spec.md §4.3: "bounded-infinite").
type RateSpec struct {
	Unit   int
	Per    float64
	Bursty bool
	Spec   IncomingSpec
}

func (RateSpec) isGeneratorSpec() {}

// generatorTick is the kernel's internal self-chaining plumbing event: it
// is never traced and carries no scheduler-facing meaning, unlike Timer
// and Tick. A generator rearms one of these for its own next emission
// point instead of precomputing an unbounded stream up front.
type generatorTick struct {
	gen *generator
}

func (generatorTick) kind() string { return "generatorTick" }

// generator is the runtime state for one GeneratorSpec: a cursor plus the
// RNG label it draws job lengths from.
type generator struct {
	spec  GeneratorSpec
	label string

	fired        bool // OneBatch: has its single tick already run?
	burstIndex   int  // Rate/bursty: which multiple of Per comes next
	arrivalIndex int  // Rate/uniform: which spaced arrival comes next
}

func newGenerator(spec GeneratorSpec, label string) *generator {
	return &generator{spec: spec, label: label}
}

// start arms the generator's first tick.
func (g *generator) start(sim *Simulator) {
	switch s := g.spec.(type) {
	case OneBatchSpec:
		sim.queue.MustPush(generatorTick{gen: g}, sim.queue.Now()+s.Delay)
	case RateSpec:
		sim.queue.MustPush(generatorTick{gen: g}, sim.queue.Now())
	}
}

// fire executes one tick: emits this tick's arrivals and, if the stream
// has more future events, arms the next tick.
func (g *generator) fire(sim *Simulator) {
	switch s := g.spec.(type) {
	case OneBatchSpec:
		g.fired = true
		now := sim.queue.Now()
		for i := 0; i < s.NJobs; i++ {
			sim.admit(now, s.Spec, g.label)
		}
		// OneBatch never rearms: its single burst exhausts the stream.

	case RateSpec:
		now := sim.queue.Now()
		if s.Bursty {
			for i := 0; i < s.Unit; i++ {
				sim.admit(now, s.Spec, g.label)
			}
			g.burstIndex++
			next := float64(g.burstIndex) * s.Per
			sim.queue.MustPush(generatorTick{gen: g}, next)
		} else {
			sim.admit(now, s.Spec, g.label)
			g.arrivalIndex++
			spacing := s.Per / float64(s.Unit)
			next := now + spacing
			sim.queue.MustPush(generatorTick{gen: g}, next)
		}
	}
}

// admit materializes a fresh Job for an arrival at now, traces its
// admission, and pushes it into the event queue.
func (sim *Simulator) admit(now float64, spec IncomingSpec, label string) {
	id := sim.nextJobID()
	job := NewJob(id, now, spec.Length, spec.Budget, sim.rng.ForLabel(label))
	sim.sink.Emit(trace.JobAdmittedRecord{
		ID:           job.ID,
		AdmittedAt:   job.AdmittedAt,
		Deadline:     job.Deadline,
		LengthSample: job.LengthSample,
		P99:          job.P99,
	})
	sim.queue.MustPush(Arrival{Job: job}, now)
	sim.admittedCount++
	observability.JobsAdmitted.Inc()
}
