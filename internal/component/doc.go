// Package component turns a registered definition into a live instance.
//
// An Instance moves through a small state machine:
//
//	unscheduled -> scheduled -> initialized -> destroyed
//	     ^             |
//	     +-------------+  (disconnected before its batch ran)
//
// Initialize runs once per instance: it builds content through the mode's
// strategy, runs the setup block, projects caller content into slots while
// keeping its authorship, binds directives and finally calls the init hook.
package component
