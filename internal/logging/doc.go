// Package logging builds the slog loggers used across lattice.
//
// It provides console and JSON handlers with a shared level knob, typed
// attribute helpers, and component loggers so every subsystem tags its output
// consistently. Construct loggers here rather than calling slog directly so
// CLI and daemon output stay uniform.
package logging
