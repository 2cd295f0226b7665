// Package cli turns the command line into an app.Config. It understands the
// render and serve commands, reads flag defaults from COMPOSITOR_* variables
// and reports usage problems as an ExitError carrying the exit code.
package cli
