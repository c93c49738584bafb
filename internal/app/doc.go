// Package app contains the core application logic. It loads the platform
// description, registers the compiled-in modules, assembles a boot session
// from both, runs it and reports the outcome. It is decoupled from any
// specific entrypoint like a CLI or test harness.
package app
