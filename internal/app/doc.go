// Package app wires application dependencies for the CLI.
//
// It loads Config from the environment, builds the slog logger at the
// configured level and constructs the channel manager with the configured
// ratchet limits, exposing them via the Wire struct for commands to use.
package app
