package pipeline

import "p7mx/internal/queue"

// EventKind identifies the kind of a pipeline event.
type EventKind string

const (
	// EventItemAdded fires when a new item enters the queue.
	EventItemAdded EventKind = "item_added"
	// EventItemStatus fires on every item state transition. Item carries
	// the new status and, for errors, a short diagnostic detail.
	EventItemStatus EventKind = "item_status_changed"
	// EventProgress fires after each item settles. Fraction grows
	// monotonically and reaches exactly 1.0 after the last item.
	EventProgress EventKind = "progress"
	// EventCompleted fires once every item of the run is terminal (or the
	// run was cancelled with the remainder still pending).
	EventCompleted EventKind = "pipeline_completed"
	// EventFailedToStart fires instead of any item event when the run
	// cannot begin; all items stay pending.
	EventFailedToStart EventKind = "pipeline_failed_to_start"
)

// Event is one pipeline notification. Events are published on a channel so
// they can be observed from a different goroutine than the one producing
// them.
type Event struct {
	Kind EventKind
	// RunID tags events belonging to one Run invocation. Empty for
	// item_added events emitted outside a run.
	RunID string
	// Item is set for item_added and item_status_changed.
	Item queue.Item
	// Fraction is set for progress and pipeline_completed.
	Fraction float64
	// Reason is set for pipeline_failed_to_start.
	Reason string
	// Cancelled is set on pipeline_completed when the run was cut short.
	Cancelled bool
}
