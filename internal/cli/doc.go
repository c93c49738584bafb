// Package cli turns the dxecore command line into an app.Config and maps
// session outcomes to process exit codes: 0 for a clean boot, 1 for a strict
// run that left units failed or stuck, 2 for usage errors and 3 for anything
// else.
package cli
