// Package component turns plain Go functions into dispatchable units.
//
// A component's signature is its dependency declaration: every argument
// after the context is a param.Param, and the dispatcher runs the component
// the first round in which all of them are available. The generic
// constructors New0 through New4 erase the argument list into a Function;
// Struct wraps a value plus a method the same way.
//
// Lifecycle:
//
//	Pending → Executed  (entry point returned nil)
//	Pending → Failed    (entry point returned an error, never retried)
//
// A Pending component remembers which argument last blocked it.
package component
