package sim

import "container/heap"

// Handle identifies a previously pushed event for lazy cancellation.
type Handle uint64

// entry is the heap element: an event plus the ordering key spec.md
// mandates — (timestamp, seq) — and a dead flag for lazy cancellation.
type entry struct {
	event     Event
	timestamp float64
	seq       uint64
	dead      bool
}

// eventHeap orders entries by (timestamp, seq) ascending, the system's
// sole tie-breaking rule (spec.md §4.1): simultaneous events fire in
// insertion order.
type eventHeap []*entry

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].timestamp != h[j].timestamp {
		return h[i].timestamp < h[j].timestamp
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*entry))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// EventQueue is the C1 time & event queue: a min-heap of timestamped
// events with a monotonic clock and lazy cancellation.
//
// EventQueue is purely single-threaded; it is mutated from within the
// handlers Simulator.Run dispatches to, which is safe only because
// dispatch is sequential (spec.md §9, "Event queue ownership").
type EventQueue struct {
	heap    eventHeap
	now     float64
	nextSeq uint64
	handles map[Handle]*entry
}

// NewEventQueue returns an empty queue with clock at 0.
func NewEventQueue() *EventQueue {
	return &EventQueue{handles: make(map[Handle]*entry)}
}

// Now returns the simulated clock's current value.
func (q *EventQueue) Now() float64 { return q.now }

// Push inserts event at timestamp, returning a Handle usable with Cancel.
// timestamp must be >= Now(); violating this is a LogicError, a bug in the
// caller, not a runtime condition to recover from (spec.md §4.1).
func (q *EventQueue) Push(event Event, timestamp float64) (Handle, error) {
	if timestamp < q.now {
		return 0, &LogicError{Reason: "push at timestamp before now"}
	}
	q.nextSeq++
	seq := q.nextSeq
	e := &entry{event: event, timestamp: timestamp, seq: seq}
	heap.Push(&q.heap, e)
	h := Handle(seq)
	q.handles[h] = e
	return h, nil
}

// MustPush is Push without an error return, for call sites (the kernel's
// own handlers) that already guarantee timestamp >= Now(); it panics on
// violation, since that would be a LogicError in the kernel itself.
func (q *EventQueue) MustPush(event Event, timestamp float64) Handle {
	h, err := q.Push(event, timestamp)
	if err != nil {
		panic(err)
	}
	return h
}

// Cancel marks a previously pushed event dead. Pop silently skips dead
// entries without advancing the clock for them. Cancelling an already
// popped or already cancelled handle is a no-op.
func (q *EventQueue) Cancel(h Handle) {
	if e, ok := q.handles[h]; ok {
		e.dead = true
		delete(q.handles, h)
	}
}

// Pop returns the event with the smallest (timestamp, seq), advancing the
// clock to its timestamp, or (nil, false) if the queue is exhausted of
// live events.
func (q *EventQueue) Pop() (Event, bool) {
	for q.heap.Len() > 0 {
		e := heap.Pop(&q.heap).(*entry)
		if e.dead {
			continue
		}
		delete(q.handles, Handle(e.seq))
		q.now = e.timestamp
		return e.event, true
	}
	return nil, false
}

// PeekTimestamp reports the timestamp of the next live event without
// popping it, or (0, false) if no live event remains. Dead entries at the
// front of the heap are discarded as a side effect, same as Pop would do
// to reach them.
func (q *EventQueue) PeekTimestamp() (float64, bool) {
	for q.heap.Len() > 0 && q.heap[0].dead {
		e := heap.Pop(&q.heap).(*entry)
		delete(q.handles, Handle(e.seq))
	}
	if q.heap.Len() == 0 {
		return 0, false
	}
	return q.heap[0].timestamp, true
}

// Len reports the number of live entries still queued (dead entries that
// have not yet been popped still count toward the underlying heap size
// but are excluded here).
func (q *EventQueue) Len() int {
	n := 0
	for _, e := range q.heap {
		if !e.dead {
			n++
		}
	}
	return n
}
