// Package service hosts the named functions the background process exposes.
//
// The Registry resolves fully qualified names like "lattice.geometry.add" to
// Go functions and runs call envelopes against them, timing every execution
// and folding failures into the response envelope. Remote dispatch is always
// explicit by name; there is no reflection-based method resolution.
//
// RegisterGeometry installs the default numerical module served by latticed.
package service
