// Package setup compiles and runs the setup block of a component source.
//
// The block is the body of a function evaluated once per instance. It sees
// an implicit environment:
//
//	$host, $root, $shadow      facades over the host, content root and boundary
//	ref, reactive, computed    reactivity primitives
//	effect                     registers a reactive side effect
//	defineProps(defs)          reads props from the host's attributes
//	$dispatch(name, detail)    emits a bubbling event from the instance
//
// plus any injected magics. It returns a plain object whose keys become the
// instance's reactive state; "init" and "destroy" functions in it are
// lifecycle hooks.
package setup
