// Package pipeline runs the extraction over the queue: it checks the
// external tool up front, walks items in sequence order through the
// pending -> processing -> done/error state machine, and publishes status
// and progress events for the presentation layer.
//
// One item's failure never stops the others; only a missing external tool
// prevents a run from starting. Queue mutation is rejected while a run is
// active.
package pipeline
