// Package registry provides the central "glue" for the module system.
//
// Modules compiled into the binary register their components, configuration
// types, legacy driver bodies, services and section extractors here. Each
// configuration type is bound to a name, which is how `config "<name>"`
// blocks of the platform description reach it.
//
// During application startup, the registry is populated and then validated
// against the loaded platform description, so a misspelled block or argument
// fails before anything is dispatched.
package registry
