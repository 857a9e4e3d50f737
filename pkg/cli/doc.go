// Package cli provides shared helpers for the ganymede command line:
// typed command errors with exit codes and human-facing output
// formatting.
package cli
