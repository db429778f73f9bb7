package sim

// Event is a tagged variant stored in the event queue. Every concrete event
// type is a value the queue hands back to the simulator's dispatch loop;
// the handler lives on Simulator, keyed by a type switch, not on the event
// itself, so event.go stays a pure data module.
type Event interface {
	// kind reports the trace-facing name of the event, used only for
	// logging.
	kind() string
}

// Arrival carries a freshly admitted job into the event queue.
type Arrival struct {
	Job *Job
}

func (Arrival) kind() string { return "Arrival" }

// BatchStart marks the instant a worker begins executing a batch. The
// worker pushes this into the queue as a self-notification at dispatch
// time so it shows up in ordered traces alongside arrivals; it carries no
// further processing, dispatch already performed the state transition.
type BatchStart struct {
	WorkerID int
	Batch    []*Job
}

func (BatchStart) kind() string { return "BatchStart" }

// BatchDone fires when a worker's batch execution completes.
type BatchDone struct {
	WorkerID int
	Batch    []*Job
}

func (BatchDone) kind() string { return "BatchDone" }

// Timer is a scheduler-owned wakeup, identified by an opaque token so the
// scheduler can recognize and ignore a timer that fired after it armed a
// newer one.
type Timer struct {
	Token uint64
}

func (Timer) kind() string { return "Timer" }

// Tick is a scheduler self-re-evaluation wakeup distinct from Timer: Timer
// carries a policy-chosen token (the My policy's push-point wakeups), Tick
// carries a scheduler token. None of the three policies arms a Tick, and
// the simulator does not route one to the scheduler; it only logs it at
// debug level.
type Tick struct {
	SchedulerToken uint64
}

func (Tick) kind() string { return "Tick" }
