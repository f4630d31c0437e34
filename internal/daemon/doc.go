// Package daemon runs the background service process: it loads the function
// registry, binds the RPC listener, and enforces single-instance execution
// per port with a file lock.
package daemon
