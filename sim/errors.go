package sim

import "fmt"

// LogicError signals an invariant violated by a component — a worker
// dispatched while busy, a negative time advance, a scheduler emitting a
// batch larger than its target worker's batch size. These represent bugs
// in the implementation, not user error (spec.md §7); callers at the
// kernel boundary should treat a non-nil LogicError as fatal.
type LogicError struct {
	Reason string
}

func (e *LogicError) Error() string {
	return fmt.Sprintf("logic error: %s", e.Reason)
}
