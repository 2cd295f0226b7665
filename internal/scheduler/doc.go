// Package scheduler batches component initialization.
//
// Instances whose host connects are queued; the first one queued in a turn
// schedules a single microtask that drains the whole batch. At batch time,
// entries that were disconnected in the meantime are dropped, and the rest
// are initialized in document order so an ancestor always initializes before
// its descendants. A failing instance is logged and skipped; the remainder
// of the batch still runs.
//
// Teardown is deferred the same way: an initialized instance whose element
// leaves the tree is destroyed at the next microtask only if it is still
// disconnected then, so moving an element keeps its state.
package scheduler
