// Package binding turns directive attributes in live markup into reactive
// effects and event listeners.
//
// Supported directives:
//
//	x-data="{...}"            pushes a new reactive layer for the subtree
//	x-init="code"             runs once when the element is bound
//	x-text="expr"             keeps the text content in sync
//	x-html="expr"             keeps the inner markup in sync
//	x-show="expr"             toggles display:none
//	x-bind:attr / :attr       keeps an attribute in sync
//	x-on:event / @event       runs code when an event reaches the element
//	<template x-if="expr">    renders the template content while truthy
//
// Expressions evaluate against the context the scope resolver reports for the
// element, plus the magics registered on the Binder ($el, $dispatch, ...).
// Hosts of custom elements are skipped together with their light children:
// the component owning them binds that content itself.
package binding
