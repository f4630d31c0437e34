// Command lattice is the client CLI for the lattice background service. It
// invokes remote functions, manages the service lifecycle, inspects the
// local call history, and works with network files.
package main
