// Package registry stores component definitions by tag name.
//
// A Definition is created once, when a component is registered, and never
// changes afterwards. Registration rejects invalid names, duplicates and tags
// already claimed by something else; every rejection is logged and returned
// as a *RegistrationError, and never affects definitions registered before.
//
// Hosts (documents that can instantiate components) attach to a Registry and
// are told about every definition, past and future, so occurrences of a tag
// become live instances as soon as it is registered.
package registry
