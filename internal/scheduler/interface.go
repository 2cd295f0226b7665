package scheduler

import "github.com/specialistvlad/compositor/internal/component"

// Scheduler decides when component instances initialize and tear down.
//
// The document lifecycle drives it: connecting a host schedules its
// instance, and disconnecting it either drops the pending entry or defers
// teardown. Implementations run everything on the caller's goroutine through
// the microtask queue; none of the methods are safe for concurrent use.
type Scheduler interface {
	// Schedule queues inst for the next batch. Instances that are already
	// scheduled, initialized or destroyed are ignored.
	Schedule(inst *component.Instance)

	// Disconnected reacts to inst's element leaving the tree.
	Disconnected(inst *component.Instance)

	// Pending lists the instances waiting for the next batch, in the order
	// they were scheduled.
	Pending() []*component.Instance
}

var _ Scheduler = (*DefaultScheduler)(nil)
