// Package coordinator is the session-lifecycle coordinator: the single bus
// subscriber that decodes command messages and routes them to the activity
// monitor, teardown sequencer, overlay manager, notification pipeline, and the
// pass-through collaborators.
//
// Dispatch runs on the bus goroutine and never blocks it: handlers needing
// real work start goroutines, so a second command can arrive while a prior
// logout or dialog is still in flight.
package coordinator
